package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados of a TransferenciaInventario. Transitions are monotonic:
// BORRADOR → ENVIADO → RECIBIDO, with CANCELADO reachable from BORRADOR
// and ENVIADO. RECIBIDO and CANCELADO are terminal.
const (
	EstadoBorrador  = "borrador"
	EstadoEnviado   = "enviado"
	EstadoRecibido  = "recibido"
	EstadoCancelado = "cancelado"
)

// transicionesEstado is the closed transition table. A missing key or an
// absent target means the transition is invalid.
var transicionesEstado = map[string][]string{
	EstadoBorrador:  {EstadoEnviado, EstadoCancelado},
	EstadoEnviado:   {EstadoRecibido, EstadoCancelado},
	EstadoRecibido:  {},
	EstadoCancelado: {},
}

// PuedeTransicionar reports whether a transfer in estado `from` may move to `to`.
func PuedeTransicionar(from, to string) bool {
	for _, s := range transicionesEstado[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransferenciaInventario moves stock of one or more products from an origin
// warehouse to a destination warehouse. Stock is deducted from the origin at
// the BORRADOR→ENVIADO transition and credited to the destination — using the
// reconciled received quantities — at ENVIADO→RECIBIDO. Transfers are never
// physically deleted; terminal states are retained for audit.
type TransferenciaInventario struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero            int        `gorm:"uniqueIndex;not null"`
	Estado            string     `gorm:"type:varchar(20);not null;default:'borrador';index"`
	AlmacenOrigenID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AlmacenDestinoID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehiculoID        *uuid.UUID `gorm:"type:uuid"`
	ChoferID          *uuid.UUID `gorm:"type:uuid"`
	Observaciones     *string
	MotivoCancelacion *string `gorm:"type:varchar(500)"`
	Fecha             time.Time
	FechaEnvio        *time.Time
	FechaRecepcion    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	AlmacenOrigen  *Almacen  `gorm:"foreignKey:AlmacenOrigenID"`
	AlmacenDestino *Almacen  `gorm:"foreignKey:AlmacenDestinoID"`
	Vehiculo       *Vehiculo `gorm:"foreignKey:VehiculoID"`
	Chofer         *Chofer   `gorm:"foreignKey:ChoferID"`

	Detalles []DetalleTransferencia `gorm:"foreignKey:TransferenciaID;constraint:OnDelete:CASCADE"`
}

func (TransferenciaInventario) TableName() string { return "transferencias_inventario" }

// DetalleTransferencia is one product line of a transfer. Cantidad is the
// quantity sent; CantidadRecibida stays nil until reception and may legally
// differ from Cantidad (the difference is audit data, never silently applied).
type DetalleTransferencia struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransferenciaID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID       uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad         int       `gorm:"not null"`
	CantidadRecibida *int
	Lote             *string
	FechaVencimiento *time.Time
	Observaciones    *string
	// Orden preserves the caller-supplied line order; recibir addresses
	// lines by this index.
	Orden     int `gorm:"not null;default:0"`
	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleTransferencia) TableName() string { return "detalles_transferencia" }
