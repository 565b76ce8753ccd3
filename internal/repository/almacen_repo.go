package repository

import (
	"context"

	"paucara/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlmacenRepository interface {
	Create(ctx context.Context, a *model.Almacen) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Almacen, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Almacen, error)
	Update(ctx context.Context, a *model.Almacen) error
}

type almacenRepo struct{ db *gorm.DB }

func NewAlmacenRepository(db *gorm.DB) AlmacenRepository { return &almacenRepo{db: db} }

func (r *almacenRepo) Create(ctx context.Context, a *model.Almacen) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *almacenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Almacen, error) {
	var a model.Almacen
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *almacenRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Almacen, error) {
	var almacenes []model.Almacen
	q := r.db.WithContext(ctx)
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&almacenes).Error
	return almacenes, err
}

func (r *almacenRepo) Update(ctx context.Context, a *model.Almacen) error {
	return r.db.WithContext(ctx).Save(a).Error
}
