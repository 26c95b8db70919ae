// Package aggregator maintains the live snapshot of the open cash session.
//
// The ledger of a session is split across three independently-updating
// streams (ventas, retiros, ingresos manuales). Each change notification
// reloads that stream's full current result set; a snapshot is only
// published once all three streams have delivered their initial load, so
// consumers never see a partial aggregate (sales loaded, withdrawals not)
// masquerading as a final figure. A partial snapshot understates
// withdrawals and inflates apparent cash.
package aggregator

import (
	"context"
	"sync"

	"lavanderia/internal/arqueo"
	"lavanderia/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Fuente identifies one of the three movement streams.
type Fuente int

const (
	FuenteVentas Fuente = iota
	FuenteRetiros
	FuenteIngresos
	numFuentes
)

func (f Fuente) String() string {
	switch f {
	case FuenteVentas:
		return "ventas"
	case FuenteRetiros:
		return "retiros"
	case FuenteIngresos:
		return "ingresos"
	default:
		return "desconocida"
	}
}

// Cargador loads the full current result set of one movement kind for a
// session. Satisfied by repository.MovimientoRepository.
type Cargador interface {
	VentasDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Venta, error)
	RetirosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Retiro, error)
	IngresosDeSesion(ctx context.Context, sesionID uuid.UUID) ([]model.IngresoManual, error)
}

// Agregador joins the three movement streams of the open session into one
// consistent arqueo.Resumen. Notification callbacks may interleave in any
// order; all state transitions happen under one mutex.
type Agregador struct {
	mu       sync.Mutex
	cargador Cargador

	sesion   *model.SesionCaja // nil = no open session
	listo    [numFuentes]bool
	ventas   []model.Venta
	retiros  []model.Retiro
	ingresos []model.IngresoManual

	// gen counts reloads per stream. A reload only applies its result set
	// if no newer reload of the same stream started while it ran, so
	// overlapping callbacks cannot land out of order.
	gen [numFuentes]uint64

	// actual is the last published snapshot. It survives reload failures:
	// a failed reload marks it Desactualizado instead of clearing it.
	actual *arqueo.Resumen

	subs []chan arqueo.Resumen
}

func New(cargador Cargador) *Agregador {
	return &Agregador{cargador: cargador}
}

// CambiarSesion tears down the current join and re-targets the aggregator:
// all readiness flags reset before any stream of the new session is loaded.
// With a nil session the snapshot is immediately Cerrada — no waiting.
func (a *Agregador) CambiarSesion(ctx context.Context, sesion *model.SesionCaja) {
	a.mu.Lock()
	a.sesion = sesion
	a.listo = [numFuentes]bool{}
	a.gen = [numFuentes]uint64{}
	a.ventas, a.retiros, a.ingresos = nil, nil, nil

	if sesion == nil {
		cerrado := arqueo.Resumen{Cerrada: true}
		a.actual = &cerrado
		a.publicar(cerrado)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	// Initial load of all three streams. Each sets its own flag; the
	// snapshot publishes exactly once, when the last one lands.
	for f := Fuente(0); f < numFuentes; f++ {
		a.Notificar(ctx, f)
	}
}

// Notificar is the change callback for one stream: reload its full result
// set, mark it ready, and republish if the join is already consistent.
func (a *Agregador) Notificar(ctx context.Context, fuente Fuente) {
	a.mu.Lock()
	sesion := a.sesion
	if sesion == nil {
		a.mu.Unlock()
		return
	}
	a.gen[fuente]++
	gen := a.gen[fuente]
	a.mu.Unlock()

	var err error
	var ventas []model.Venta
	var retiros []model.Retiro
	var ingresos []model.IngresoManual

	switch fuente {
	case FuenteVentas:
		ventas, err = a.cargador.VentasDeSesion(ctx, sesion.ID)
	case FuenteRetiros:
		retiros, err = a.cargador.RetirosDeSesion(ctx, sesion.ID)
	case FuenteIngresos:
		ingresos, err = a.cargador.IngresosDeSesion(ctx, sesion.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// The session may have been switched while the load was in flight;
	// stale results must not contaminate the new join. Likewise a newer
	// reload of the same stream supersedes this one even when it finishes
	// first.
	if a.sesion == nil || a.sesion.ID != sesion.ID || a.gen[fuente] != gen {
		return
	}

	if err != nil {
		log.Error().Err(err).Stringer("fuente", fuente).Msg("agregador: recarga de stream falló")
		a.degradar()
		return
	}

	switch fuente {
	case FuenteVentas:
		a.ventas = ventas
	case FuenteRetiros:
		a.retiros = retiros
	case FuenteIngresos:
		a.ingresos = ingresos
	}
	a.listo[fuente] = true

	for _, ok := range a.listo {
		if !ok {
			return // join not yet consistent — do not publish partials
		}
	}

	r := a.recomputar()
	a.actual = &r
	a.publicar(r)
}

// Degradar republishes the last snapshot flagged Desactualizado without
// touching the join. Used when the source of truth cannot be consulted and
// the previous figures are the best available answer.
func (a *Agregador) Degradar() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.degradar()
}

// degradar. Caller holds the mutex.
func (a *Agregador) degradar() {
	if a.actual == nil {
		return
	}
	degradado := *a.actual
	degradado.Desactualizado = true
	a.actual = &degradado
	a.publicar(degradado)
}

// Actual returns the last published snapshot. ok is false before the first
// consistent publish.
func (a *Agregador) Actual() (arqueo.Resumen, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.actual == nil {
		return arqueo.Resumen{}, false
	}
	return *a.actual, true
}

// Suscribir returns a channel receiving every published snapshot. Slow
// consumers miss intermediate snapshots rather than block the aggregator.
func (a *Agregador) Suscribir() <-chan arqueo.Resumen {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch := make(chan arqueo.Resumen, 8)
	a.subs = append(a.subs, ch)
	return ch
}

// recomputar derives the snapshot from the three local copies.
// Caller holds the mutex.
func (a *Agregador) recomputar() arqueo.Resumen {
	return Resumir(a.sesion, a.ventas, a.retiros, a.ingresos)
}

// Resumir folds a session's three movement streams into one snapshot.
// Pure: the same inputs always yield identical subtotals. Also used by the
// lifecycle controller at close time, where the repository lists are
// authoritative.
func Resumir(sesion *model.SesionCaja, ventas []model.Venta, retiros []model.Retiro, ingresos []model.IngresoManual) arqueo.Resumen {
	r := arqueo.Resumen{
		SesionID:     sesion.ID,
		MontoInicial: sesion.MontoInicial,
	}

	for _, v := range ventas {
		switch v.MetodoPago {
		case model.MetodoEfectivo:
			r.Ventas.Efectivo = r.Ventas.Efectivo.Add(v.Monto)
		case model.MetodoTransferencia:
			r.Ventas.Transferencia = r.Ventas.Transferencia.Add(v.Monto)
		case model.MetodoDebito:
			r.Ventas.Debito = r.Ventas.Debito.Add(v.Monto)
		case model.MetodoCredito:
			r.Ventas.Credito = r.Ventas.Credito.Add(v.Monto)
		}
	}
	for _, ret := range retiros {
		switch ret.MetodoPago {
		case model.MetodoEfectivo:
			r.Retiros.Efectivo = r.Retiros.Efectivo.Add(ret.Monto)
		case model.MetodoTransferencia:
			r.Retiros.Transferencia = r.Retiros.Transferencia.Add(ret.Monto)
		}
	}
	for _, ing := range ingresos {
		switch ing.MetodoPago {
		case model.MetodoEfectivo:
			r.Ingresos.Efectivo = r.Ingresos.Efectivo.Add(ing.Monto)
		case model.MetodoTransferencia:
			r.Ingresos.Transferencia = r.Ingresos.Transferencia.Add(ing.Monto)
		}
	}
	return r
}

// publicar fans the snapshot out to subscribers. Caller holds the mutex.
func (a *Agregador) publicar(r arqueo.Resumen) {
	for _, ch := range a.subs {
		select {
		case ch <- r:
		default:
		}
	}
}
