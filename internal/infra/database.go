package infra

import (
	"fmt"

	"lavanderia/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial unique indexes, counter seeding).
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

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Prenda{},
		&model.SesionCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Retiro{},
		&model.IngresoManual{},
		&model.VentaPendiente{},
		&model.Contador{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Safe to re-run on an already-patched schema.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open session, enforced at the database. The service
		// checks first, but two concurrent opens can both pass that check;
		// this index makes the second insert fail.
		{"partial unique index: single open session",
			`CREATE UNIQUE INDEX IF NOT EXISTS uni_sesion_caja_abierta
			     ON sesiones_caja ((true))
			     WHERE closed_at IS NULL`},
		// Seed the ticket counter so the atomic UPDATE … RETURNING always
		// finds its row. DO NOTHING keeps an existing value intact.
		{"seed ticket counter",
			`INSERT INTO contadores (nombre, ultimo) VALUES ('ticket', 0)
			     ON CONFLICT (nombre) DO NOTHING`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
