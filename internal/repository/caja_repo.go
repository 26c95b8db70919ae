package repository

import (
	"context"
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	// FindAbierta returns the session with closed_at IS NULL.
	// gorm.ErrRecordNotFound when no session is open.
	FindAbierta(ctx context.Context) (*model.SesionCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindUltimaCerrada returns the most recently closed session, used to
	// compute the opening variance of the next one.
	FindUltimaCerrada(ctx context.Context) (*model.SesionCaja, error)
	// CerrarSesion persists all closing figures in a single update.
	CerrarSesion(ctx context.Context, s *model.SesionCaja) error
	ListCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindAbierta(ctx context.Context) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("closed_at IS NULL").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindUltimaCerrada(ctx context.Context) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("closed_at IS NOT NULL").
		Order("closed_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) CerrarSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *cajaRepo) ListCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Where("closed_at IS NOT NULL")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}
