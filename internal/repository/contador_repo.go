package repository

import (
	"context"

	"gorm.io/gorm"
)

// ContadorRepository advances named counters. The increment is a single
// atomic read-modify-write at the store — concurrent callers each get a
// distinct value or an error, never a duplicate.
type ContadorRepository interface {
	// Incrementar returns the counter's new value. When tx is non-nil the
	// increment joins that transaction, so a rolled-back sale still consumes
	// the number (gaps in the sequence are acceptable, duplicates are not).
	Incrementar(ctx context.Context, tx *gorm.DB, nombre string) (int64, error)
}

type contadorRepo struct{ db *gorm.DB }

func NewContadorRepository(db *gorm.DB) ContadorRepository { return &contadorRepo{db: db} }

func (r *contadorRepo) Incrementar(ctx context.Context, tx *gorm.DB, nombre string) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var ultimo int64
	res := db.WithContext(ctx).
		Raw("UPDATE contadores SET ultimo = ultimo + 1 WHERE nombre = ? RETURNING ultimo", nombre).
		Scan(&ultimo)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Counter row missing — seeded by the schema patches, so this only
		// happens on a broken deployment.
		return 0, gorm.ErrRecordNotFound
	}
	return ultimo, nil
}
