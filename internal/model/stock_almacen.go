package model

import (
	"time"

	"github.com/google/uuid"
)

// StockAlmacen holds the authoritative quantity of a product in a warehouse.
// Cantidad never goes below zero: deductions use an atomic
// decrement-with-floor UPDATE, so a failed floor check leaves the row intact.
type StockAlmacen struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AlmacenID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_almacen_producto"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_almacen_producto"`
	Cantidad   int       `gorm:"not null;default:0;check:cantidad >= 0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Almacen  *Almacen  `gorm:"foreignKey:AlmacenID"`
	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (StockAlmacen) TableName() string { return "stock_almacenes" }
