package service

import (
	"context"
	"sync"
	"time"

	"lavanderia/internal/arqueo"
	"lavanderia/internal/dto"
	"lavanderia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes for the repository layer. They keep the same contracts the
// gorm implementations honor (gorm.ErrRecordNotFound, rows-affected counts)
// so the services under test cannot tell the difference.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Notificador ──────────────────────────────────────────────────────────────

type fakeNotificador struct {
	mu      sync.Mutex
	canales []string
}

func (n *fakeNotificador) Publicar(_ context.Context, canal string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.canales = append(n.canales, canal)
}

func (n *fakeNotificador) publicados() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.canales))
	copy(out, n.canales)
	return out
}

// ── CajaRepository ───────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	abierta  *model.SesionCaja
	cerradas []model.SesionCaja
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.abierta = s
	return nil
}

func (r *fakeCajaRepo) FindAbierta(_ context.Context) (*model.SesionCaja, error) {
	if r.abierta == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.abierta, nil
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	if r.abierta != nil && r.abierta.ID == id {
		return r.abierta, nil
	}
	for i := range r.cerradas {
		if r.cerradas[i].ID == id {
			return &r.cerradas[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindUltimaCerrada(_ context.Context) (*model.SesionCaja, error) {
	if len(r.cerradas) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &r.cerradas[len(r.cerradas)-1], nil
}

func (r *fakeCajaRepo) CerrarSesion(_ context.Context, s *model.SesionCaja) error {
	r.cerradas = append(r.cerradas, *s)
	r.abierta = nil
	return nil
}

func (r *fakeCajaRepo) ListCerradas(_ context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	return r.cerradas, int64(len(r.cerradas)), nil
}

// ── MovimientoRepository ─────────────────────────────────────────────────────

type fakeMovimientoRepo struct {
	ventas   []model.Venta
	retiros  []model.Retiro
	ingresos []model.IngresoManual

	failVentas error // injected on VentasDeSesion
}

func (r *fakeMovimientoRepo) DB() *gorm.DB { return nil }

func (r *fakeMovimientoRepo) CreateVentaTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	r.ventas = append(r.ventas, *v)
	return nil
}

func (r *fakeMovimientoRepo) CreateRetiro(_ context.Context, ret *model.Retiro) error {
	ret.ID = uuid.New()
	r.retiros = append(r.retiros, *ret)
	return nil
}

func (r *fakeMovimientoRepo) CreateIngreso(_ context.Context, ing *model.IngresoManual) error {
	ing.ID = uuid.New()
	r.ingresos = append(r.ingresos, *ing)
	return nil
}

func (r *fakeMovimientoRepo) UpdateNota(_ context.Context, ventaID uuid.UUID, nota string) (int64, error) {
	for i := range r.ventas {
		if r.ventas[i].ID == ventaID {
			r.ventas[i].Nota = nota
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeMovimientoRepo) VentasDeSesion(_ context.Context, sesionID uuid.UUID) ([]model.Venta, error) {
	if r.failVentas != nil {
		return nil, r.failVentas
	}
	var out []model.Venta
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) RetirosDeSesion(_ context.Context, sesionID uuid.UUID) ([]model.Retiro, error) {
	var out []model.Retiro
	for _, ret := range r.retiros {
		if ret.SesionCajaID == sesionID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) IngresosDeSesion(_ context.Context, sesionID uuid.UUID) ([]model.IngresoManual, error) {
	var out []model.IngresoManual
	for _, ing := range r.ingresos {
		if ing.SesionCajaID == sesionID {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) QueryVentas(_ context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	if filter.Ticket != "" {
		var out []model.Venta
		for _, v := range r.ventas {
			if v.NumeroTicket == filter.Ticket {
				out = append(out, v)
			}
		}
		return out, nil
	}
	return r.ventas, nil
}

func (r *fakeMovimientoRepo) QueryRetiros(_ context.Context, filter dto.MovimientoFilter) ([]model.Retiro, error) {
	if filter.SesionID != "" {
		var out []model.Retiro
		for _, ret := range r.retiros {
			if ret.SesionCajaID.String() == filter.SesionID {
				out = append(out, ret)
			}
		}
		return out, nil
	}
	return r.retiros, nil
}

func (r *fakeMovimientoRepo) QueryIngresos(_ context.Context, filter dto.MovimientoFilter) ([]model.IngresoManual, error) {
	if filter.SesionID != "" {
		var out []model.IngresoManual
		for _, ing := range r.ingresos {
			if ing.SesionCajaID.String() == filter.SesionID {
				out = append(out, ing)
			}
		}
		return out, nil
	}
	return r.ingresos, nil
}

// ── PendienteRepository ──────────────────────────────────────────────────────

type fakePendienteRepo struct {
	pendientes map[uuid.UUID]model.VentaPendiente
}

func newFakePendienteRepo() *fakePendienteRepo {
	return &fakePendienteRepo{pendientes: make(map[uuid.UUID]model.VentaPendiente)}
}

func (r *fakePendienteRepo) DB() *gorm.DB { return nil }

func (r *fakePendienteRepo) CreateTx(_ *gorm.DB, p *model.VentaPendiente) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.pendientes[p.ID] = *p
	return nil
}

func (r *fakePendienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.VentaPendiente, error) {
	p, ok := r.pendientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakePendienteRepo) List(_ context.Context) ([]model.VentaPendiente, error) {
	out := make([]model.VentaPendiente, 0, len(r.pendientes))
	for _, p := range r.pendientes {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePendienteRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.pendientes)), nil
}

func (r *fakePendienteRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := r.pendientes[id]; !ok {
		return 0, nil
	}
	delete(r.pendientes, id)
	return 1, nil
}

func (r *fakePendienteRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	return r.DeleteTx(nil, id)
}

// ── PrendaRepository ─────────────────────────────────────────────────────────

type fakePrendaRepo struct {
	prendas map[uuid.UUID]model.Prenda
}

func newFakePrendaRepo(prendas ...model.Prenda) *fakePrendaRepo {
	r := &fakePrendaRepo{prendas: make(map[uuid.UUID]model.Prenda)}
	for _, p := range prendas {
		r.prendas[p.ID] = p
	}
	return r
}

func (r *fakePrendaRepo) Create(_ context.Context, p *model.Prenda) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.prendas[p.ID] = *p
	return nil
}

func (r *fakePrendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Prenda, error) {
	p, ok := r.prendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakePrendaRepo) List(_ context.Context) ([]model.Prenda, error) {
	out := make([]model.Prenda, 0, len(r.prendas))
	for _, p := range r.prendas {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePrendaRepo) Update(_ context.Context, p *model.Prenda) error {
	if _, ok := r.prendas[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.prendas[p.ID] = *p
	return nil
}

func (r *fakePrendaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.prendas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activa = false
	r.prendas[id] = p
	return nil
}

// ── ContadorRepository ───────────────────────────────────────────────────────

type fakeContadorRepo struct {
	mu       sync.Mutex
	valores  map[string]int64
	failNext error
}

func newFakeContadorRepo(desde int64) *fakeContadorRepo {
	return &fakeContadorRepo{valores: map[string]int64{model.NombreContadorTicket: desde}}
}

func (r *fakeContadorRepo) Incrementar(_ context.Context, _ *gorm.DB, nombre string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		return 0, r.failNext
	}
	if _, ok := r.valores[nombre]; !ok {
		return 0, gorm.ErrRecordNotFound
	}
	r.valores[nombre]++
	return r.valores[nombre], nil
}

// ── VistaCaja / Despachador ─────────────────────────────────────────────────

type fakeVista struct {
	resumen arqueo.Resumen
	ok      bool
}

func (v *fakeVista) Actual() (arqueo.Resumen, bool) { return v.resumen, v.ok }

type fakeDespachador struct {
	fidelidad []interface{}
	recibos   []interface{}
}

func (d *fakeDespachador) EncolarFidelidad(_ context.Context, payload interface{}) error {
	d.fidelidad = append(d.fidelidad, payload)
	return nil
}

func (d *fakeDespachador) EncolarRecibo(_ context.Context, payload interface{}) error {
	d.recibos = append(d.recibos, payload)
	return nil
}
