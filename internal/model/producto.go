package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. Quantities live per warehouse in StockAlmacen;
// the product row itself carries no stock.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	Categoria    string          `gorm:"not null"`
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockMinimo  int             `gorm:"not null;default:5"`
	UnidadMedida string          `gorm:"not null;default:'unidad'"`
	// Perecedero products require lote / fecha_vencimiento on transfer lines
	// to stay traceable; non-perishables may omit them.
	Perecedero bool `gorm:"not null;default:false"`
	Activo     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Producto) TableName() string { return "productos" }
