package repository

import (
	"context"

	"paucara/internal/dto"
	"paucara/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferenciaRepository defines the data access contract for inventory
// transfers. Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
//
// UpdateEstadoTx is the concurrency primitive: it compare-and-swaps the
// estado column, so two racing callers can never both observe and act on the
// same state value.
type TransferenciaRepository interface {
	CreateTx(tx *gorm.DB, t *model.TransferenciaInventario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TransferenciaInventario, error)
	// FindByIDTx re-reads inside a transaction (used after a CAS miss to
	// distinguish not-found from wrong-state).
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TransferenciaInventario, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	// UpdateEstadoTx atomically applies `updates` (which must include the new
	// estado) only if the row is still in estado `desde`. Returns false when
	// the guard did not match.
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, desde string, updates map[string]interface{}) (bool, error)
	// ReplaceDetallesTx swaps the full line set of a BORRADOR transfer.
	ReplaceDetallesTx(tx *gorm.DB, transferenciaID uuid.UUID, detalles []model.DetalleTransferencia) error
	UpdateCantidadRecibidaTx(tx *gorm.DB, detalleID uuid.UUID, cantidad int) error
	List(ctx context.Context, filter dto.TransferenciaFilter) ([]model.TransferenciaInventario, int64, error)
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type transferenciaRepo struct{ db *gorm.DB }

func NewTransferenciaRepository(db *gorm.DB) TransferenciaRepository {
	return &transferenciaRepo{db: db}
}

func (r *transferenciaRepo) DB() *gorm.DB { return r.db }

func (r *transferenciaRepo) CreateTx(tx *gorm.DB, t *model.TransferenciaInventario) error {
	return tx.Create(t).Error
}

func (r *transferenciaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TransferenciaInventario, error) {
	var t model.TransferenciaInventario
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("Detalles.Producto").
		Preload("AlmacenOrigen").
		Preload("AlmacenDestino").
		First(&t, id).Error
	return &t, err
}

func (r *transferenciaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TransferenciaInventario, error) {
	var t model.TransferenciaInventario
	err := tx.
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		First(&t, id).Error
	return &t, err
}

func (r *transferenciaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic transfer number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('transferencias_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *transferenciaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, desde string, updates map[string]interface{}) (bool, error) {
	res := tx.Model(&model.TransferenciaInventario{}).
		Where("id = ? AND estado = ?", id, desde).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *transferenciaRepo) ReplaceDetallesTx(tx *gorm.DB, transferenciaID uuid.UUID, detalles []model.DetalleTransferencia) error {
	if err := tx.Where("transferencia_id = ?", transferenciaID).
		Delete(&model.DetalleTransferencia{}).Error; err != nil {
		return err
	}
	for i := range detalles {
		detalles[i].TransferenciaID = transferenciaID
		detalles[i].Orden = i
	}
	return tx.Create(&detalles).Error
}

func (r *transferenciaRepo) UpdateCantidadRecibidaTx(tx *gorm.DB, detalleID uuid.UUID, cantidad int) error {
	return tx.Model(&model.DetalleTransferencia{}).Where("id = ?", detalleID).
		Update("cantidad_recibida", cantidad).Error
}

func (r *transferenciaRepo) List(ctx context.Context, filter dto.TransferenciaFilter) ([]model.TransferenciaInventario, int64, error) {
	var transferencias []model.TransferenciaInventario
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TransferenciaInventario{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.AlmacenOrigen != "" {
		q = q.Where("almacen_origen_id = ?", filter.AlmacenOrigen)
	}
	if filter.AlmacenDestino != "" {
		q = q.Where("almacen_destino_id = ?", filter.AlmacenDestino)
	}
	if filter.Busqueda != "" {
		q = q.Where("CAST(numero AS TEXT) ILIKE ? OR observaciones ILIKE ?",
			"%"+filter.Busqueda+"%", "%"+filter.Busqueda+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("AlmacenOrigen").
		Preload("AlmacenDestino").
		Order("numero DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transferencias).Error
	return transferencias, total, err
}
