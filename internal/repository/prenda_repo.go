package repository

import (
	"context"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrendaRepository interface {
	Create(ctx context.Context, p *model.Prenda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prenda, error)
	List(ctx context.Context) ([]model.Prenda, error)
	Update(ctx context.Context, p *model.Prenda) error
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type prendaRepo struct{ db *gorm.DB }

func NewPrendaRepository(db *gorm.DB) PrendaRepository { return &prendaRepo{db: db} }

func (r *prendaRepo) Create(ctx context.Context, p *model.Prenda) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *prendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Prenda, error) {
	var p model.Prenda
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prendaRepo) List(ctx context.Context) ([]model.Prenda, error) {
	var prendas []model.Prenda
	err := r.db.WithContext(ctx).Where("activa = true").Order("nombre").Find(&prendas).Error
	return prendas, err
}

func (r *prendaRepo) Update(ctx context.Context, p *model.Prenda) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *prendaRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Prenda{}).Where("id = ?", id).Update("activa", false).Error
}
