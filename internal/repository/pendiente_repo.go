package repository

import (
	"context"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PendienteRepository interface {
	CreateTx(tx *gorm.DB, p *model.VentaPendiente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VentaPendiente, error)
	List(ctx context.Context) ([]model.VentaPendiente, error)
	Count(ctx context.Context) (int64, error)
	// DeleteTx removes a pending sale and reports how many rows went away.
	// Settlement relies on this: a second concurrent settle sees 0 rows and
	// aborts instead of double-recording the sale.
	DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type pendienteRepo struct{ db *gorm.DB }

func NewPendienteRepository(db *gorm.DB) PendienteRepository { return &pendienteRepo{db: db} }

func (r *pendienteRepo) DB() *gorm.DB { return r.db }

func (r *pendienteRepo) CreateTx(tx *gorm.DB, p *model.VentaPendiente) error {
	return tx.Create(p).Error
}

func (r *pendienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VentaPendiente, error) {
	var p model.VentaPendiente
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pendienteRepo) List(ctx context.Context) ([]model.VentaPendiente, error) {
	var pendientes []model.VentaPendiente
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&pendientes).Error
	return pendientes, err
}

func (r *pendienteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.VentaPendiente{}).Count(&n).Error
	return n, err
}

func (r *pendienteRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Delete(&model.VentaPendiente{}, id)
	return res.RowsAffected, res.Error
}

func (r *pendienteRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.VentaPendiente{}, id)
	return res.RowsAffected, res.Error
}
