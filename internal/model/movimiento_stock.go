package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimientoStock registra cada cambio de stock de un producto en un almacén.
// Se crea automáticamente al enviar, recibir o cancelar una transferencia,
// y en ajustes manuales.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AlmacenID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"` // "transferencia_envio" | "transferencia_recepcion" | "transferencia_reversion" | "ajuste_manual"
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // transferencia_id if applicable
	CreatedAt     time.Time

	Almacen  *Almacen  `gorm:"foreignKey:AlmacenID"`
	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
