package infra

import (
	"fmt"

	"paucara/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// AutoMigrate cannot express (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against
// throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Almacen{},
		&model.Producto{},
		&model.Usuario{},
		&model.Vehiculo{},
		&model.Chofer{},
		&model.TransferenciaInventario{},
		&model.DetalleTransferencia{},
		&model.StockAlmacen{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM cannot express. Each
// statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Atomic transfer numbering. nextval() never hands the same value to
		// two transactions, so numero stays unique under concurrent creation.
		{"create transferencias_numero_seq",
			`CREATE SEQUENCE IF NOT EXISTS transferencias_numero_seq START 1`},
		// Partial index for the operational dashboard: open transfers only.
		{"create idx_transferencias_abiertas", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_transferencias_abiertas') THEN
    CREATE INDEX idx_transferencias_abiertas
        ON transferencias_inventario (almacen_origen_id, estado)
        WHERE estado IN ('borrador', 'enviado');
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
