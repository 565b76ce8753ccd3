package model

import (
	"time"

	"github.com/google/uuid"
)

// Almacen represents a physical or logical stock location.
// RequiereTransporteExterno marks depots that always need a vehicle
// assigned for transfers, regardless of location (e.g. bonded warehouses).
type Almacen struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre                    string    `gorm:"uniqueIndex;not null"`
	UbicacionFisica           *string
	RequiereTransporteExterno bool `gorm:"not null;default:false"`
	Responsable               *string
	Activo                    bool `gorm:"not null;default:true"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (Almacen) TableName() string { return "almacenes" }
