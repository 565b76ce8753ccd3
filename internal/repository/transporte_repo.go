package repository

import (
	"context"

	"paucara/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransporteRepository resolves the optional vehicle / driver references a
// transfer may carry. Both catalogs are small and read-mostly.
type TransporteRepository interface {
	FindVehiculoByID(ctx context.Context, id uuid.UUID) (*model.Vehiculo, error)
	FindChoferByID(ctx context.Context, id uuid.UUID) (*model.Chofer, error)
	ListVehiculos(ctx context.Context) ([]model.Vehiculo, error)
	ListChoferes(ctx context.Context) ([]model.Chofer, error)
}

type transporteRepo struct{ db *gorm.DB }

func NewTransporteRepository(db *gorm.DB) TransporteRepository {
	return &transporteRepo{db: db}
}

func (r *transporteRepo) FindVehiculoByID(ctx context.Context, id uuid.UUID) (*model.Vehiculo, error) {
	var v model.Vehiculo
	err := r.db.WithContext(ctx).First(&v, id).Error
	return &v, err
}

func (r *transporteRepo) FindChoferByID(ctx context.Context, id uuid.UUID) (*model.Chofer, error) {
	var c model.Chofer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *transporteRepo) ListVehiculos(ctx context.Context) ([]model.Vehiculo, error) {
	var vehiculos []model.Vehiculo
	err := r.db.WithContext(ctx).Where("activo = true").Order("placa ASC").Find(&vehiculos).Error
	return vehiculos, err
}

func (r *transporteRepo) ListChoferes(ctx context.Context) ([]model.Chofer, error) {
	var choferes []model.Chofer
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&choferes).Error
	return choferes, err
}
