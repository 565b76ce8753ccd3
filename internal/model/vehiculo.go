package model

import (
	"time"

	"github.com/google/uuid"
)

// Vehiculo is a delivery vehicle assignable to physical transfers.
// Assignment is informational only — it never blocks a state transition.
type Vehiculo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Placa       string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	CapacidadKg *int
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Vehiculo) TableName() string { return "vehiculos" }

// Chofer is a driver assignable to physical transfers.
type Chofer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Licencia  *string
	Telefono  *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Chofer) TableName() string { return "choferes" }
