package repository

import (
	"context"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoRepository is the append-only money-movement log: three typed
// tables behind one access point. Movements are never deleted and never
// updated, with the single exception of a sale's free-text note.
type MovimientoRepository interface {
	CreateVentaTx(tx *gorm.DB, v *model.Venta) error
	CreateRetiro(ctx context.Context, ret *model.Retiro) error
	CreateIngreso(ctx context.Context, ing *model.IngresoManual) error
	// UpdateNota edits a sale's note; returns the number of rows touched so
	// the service can map 0 to a not-found error.
	UpdateNota(ctx context.Context, ventaID uuid.UUID, nota string) (int64, error)

	// Full-result-set loads per kind — these feed the session aggregator.
	VentasDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Venta, error)
	RetirosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Retiro, error)
	IngresosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.IngresoManual, error)

	QueryVentas(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error)
	QueryRetiros(ctx context.Context, filter dto.MovimientoFilter) ([]model.Retiro, error)
	QueryIngresos(ctx context.Context, filter dto.MovimientoFilter) ([]model.IngresoManual, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) CreateVentaTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *movimientoRepo) CreateRetiro(ctx context.Context, ret *model.Retiro) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *movimientoRepo) CreateIngreso(ctx context.Context, ing *model.IngresoManual) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

func (r *movimientoRepo) UpdateNota(ctx context.Context, ventaID uuid.UUID, nota string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ?", ventaID).
		Update("nota", nota)
	return res.RowsAffected, res.Error
}

func (r *movimientoRepo) VentasDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Preload("Items").
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *movimientoRepo) RetirosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Retiro, error) {
	var retiros []model.Retiro
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&retiros).Error
	return retiros, err
}

func (r *movimientoRepo) IngresosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.IngresoManual, error) {
	var ingresos []model.IngresoManual
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&ingresos).Error
	return ingresos, err
}

func (r *movimientoRepo) QueryVentas(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.SesionID != "" {
		q = q.Where("sesion_caja_id = ?", filter.SesionID)
	}
	if filter.Ticket != "" {
		q = q.Where("numero_ticket = ?", filter.Ticket)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(created_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(created_at) <= ?", filter.Hasta)
	}

	var ventas []model.Venta
	err := q.Preload("Items").Order("created_at DESC").Find(&ventas).Error
	return ventas, err
}

func (r *movimientoRepo) QueryRetiros(ctx context.Context, filter dto.MovimientoFilter) ([]model.Retiro, error) {
	var retiros []model.Retiro
	err := r.filtrarMovimientos(ctx, &model.Retiro{}, filter).Find(&retiros).Error
	return retiros, err
}

func (r *movimientoRepo) QueryIngresos(ctx context.Context, filter dto.MovimientoFilter) ([]model.IngresoManual, error) {
	var ingresos []model.IngresoManual
	err := r.filtrarMovimientos(ctx, &model.IngresoManual{}, filter).Find(&ingresos).Error
	return ingresos, err
}

func (r *movimientoRepo) filtrarMovimientos(ctx context.Context, modelo interface{}, filter dto.MovimientoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(modelo)
	if filter.SesionID != "" {
		q = q.Where("sesion_caja_id = ?", filter.SesionID)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(created_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(created_at) <= ?", filter.Hasta)
	}
	return q.Order("created_at DESC")
}
