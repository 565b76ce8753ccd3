package repository

import (
	"context"

	"paucara/internal/dto"
	"paucara/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns the per-(almacen, producto) quantities. Deduct and Add
// are single atomic UPDATEs, so two transfers touching the same stock row
// serialize at the database and the check-available-then-deduct sequence can
// never race into negative stock.
type StockRepository interface {
	// Disponible returns the current quantity; a missing row reads as 0.
	Disponible(ctx context.Context, almacenID, productoID uuid.UUID) (int, error)
	DisponibleTx(tx *gorm.DB, almacenID, productoID uuid.UUID) (int, error)
	List(ctx context.Context, filter dto.StockFilter) ([]model.StockAlmacen, error)
	// DeductTx decrements with a floor check in one statement. Returns false
	// when the row is missing or the remaining quantity would go negative;
	// in that case nothing was changed.
	DeductTx(tx *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) (bool, error)
	// AddTx upserts the stock row and increments it. Cannot fail on balance.
	AddTx(tx *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) error
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) Disponible(ctx context.Context, almacenID, productoID uuid.UUID) (int, error) {
	return r.DisponibleTx(r.db.WithContext(ctx), almacenID, productoID)
}

func (r *stockRepo) DisponibleTx(tx *gorm.DB, almacenID, productoID uuid.UUID) (int, error) {
	var s model.StockAlmacen
	err := tx.Where("almacen_id = ? AND producto_id = ?", almacenID, productoID).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.Cantidad, nil
}

func (r *stockRepo) List(ctx context.Context, filter dto.StockFilter) ([]model.StockAlmacen, error) {
	var entries []model.StockAlmacen
	q := r.db.WithContext(ctx).Model(&model.StockAlmacen{}).
		Preload("Almacen").Preload("Producto")
	if filter.AlmacenID != "" {
		q = q.Where("almacen_id = ?", filter.AlmacenID)
	}
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *stockRepo) DeductTx(tx *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) (bool, error) {
	res := tx.Model(&model.StockAlmacen{}).
		Where("almacen_id = ? AND producto_id = ? AND cantidad >= ?", almacenID, productoID, cantidad).
		Update("cantidad", gorm.Expr("cantidad - ?", cantidad))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stockRepo) AddTx(tx *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) error {
	entry := model.StockAlmacen{
		AlmacenID:  almacenID,
		ProductoID: productoID,
		Cantidad:   cantidad,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "almacen_id"}, {Name: "producto_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"cantidad": gorm.Expr("stock_almacenes.cantidad + EXCLUDED.cantidad"),
		}),
	}).Create(&entry).Error
}
