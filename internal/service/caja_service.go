package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/arqueo"
	"lavanderia/internal/dto"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notificador publishes ledger-change events consumed by the session
// aggregator. Fire-and-forget: a lost notification costs freshness, never
// correctness, because every reload fetches the full result set.
type Notificador interface {
	Publicar(ctx context.Context, canal string)
}

// CajaService owns the open → closed lifecycle of the cash drawer. The open
// session is an explicit value returned by Abierta and passed into whichever
// component needs it — never ambient global state.
type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	// Abierta returns the currently open session, or ErrCajaCerrada.
	Abierta(ctx context.Context) (*model.SesionCaja, error)
	// SolicitarCierre surfaces the open-tab count before closing. It is a
	// warn-and-confirm step, not a precondition the data layer enforces.
	SolicitarCierre(ctx context.Context) (*dto.SolicitarCierreResponse, error)
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	Reporte(ctx context.Context, id uuid.UUID) (*dto.SesionCajaResponse, error)
	// ReportePDF renders the arqueo sheet of a closed session and returns
	// the path of the generated file.
	ReportePDF(ctx context.Context, id uuid.UUID) (string, error)
	Historial(ctx context.Context, page, limit int) (*dto.HistorialCajaResponse, error)
}

type cajaService struct {
	repo           repository.CajaRepository
	movimientos    repository.MovimientoRepository
	pendientes     repository.PendienteRepository
	notificador    Notificador
	pdfStoragePath string
}

func NewCajaService(
	repo repository.CajaRepository,
	movimientos repository.MovimientoRepository,
	pendientes repository.PendienteRepository,
	notificador Notificador,
	pdfStoragePath string,
) CajaService {
	return &cajaService{
		repo:           repo,
		movimientos:    movimientos,
		pendientes:     pendientes,
		notificador:    notificador,
		pdfStoragePath: pdfStoragePath,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, ErrMontoInvalido
	}
	if err := arqueo.ValidarDesglose(req.Desglose, req.MontoInicial); err != nil {
		return nil, err
	}

	// Query-before-create guard, backed by the partial unique index on
	// sesiones_caja so two concurrent Abrir calls cannot both succeed.
	if _, err := s.repo.FindAbierta(ctx); err == nil {
		return nil, ErrCajaYaAbierta
	}

	var desvioApertura *decimal.Decimal
	if anterior, err := s.repo.FindUltimaCerrada(ctx); err == nil && anterior.MontoContado != nil {
		desvioApertura = arqueo.DesvioApertura(req.MontoInicial, anterior.MontoContado)
	}

	sesion := &model.SesionCaja{
		UsuarioID:        usuarioID,
		MontoInicial:     req.MontoInicial,
		DesgloseApertura: req.Desglose,
		DesvioApertura:   desvioApertura,
		OpenedAt:         time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalSesion)
	}
	return s.sesionToResponse(sesion, nil), nil
}

// ── Abierta ───────────────────────────────────────────────────────────────────

func (s *cajaService) Abierta(ctx context.Context) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindAbierta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCajaCerrada
		}
		return nil, err
	}
	return sesion, nil
}

// ── SolicitarCierre ──────────────────────────────────────────────────────────

func (s *cajaService) SolicitarCierre(ctx context.Context) (*dto.SolicitarCierreResponse, error) {
	if _, err := s.Abierta(ctx); err != nil {
		return nil, err
	}
	n, err := s.pendientes.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SolicitarCierreResponse{PendientesDeCobro: n}, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoContado.IsNegative() {
		return nil, ErrMontoInvalido
	}
	if err := arqueo.ValidarDesglose(req.Desglose, req.MontoContado); err != nil {
		return nil, err
	}

	sesion, err := s.Abierta(ctx)
	if err != nil {
		return nil, err
	}

	// Final subtotals come from a fresh full read of the three streams —
	// the same fold the aggregator publishes, recomputed here so the
	// persisted figures are authoritative even if a notification was lost.
	resumen, err := s.resumenDeSesion(ctx, sesion)
	if err != nil {
		return nil, fmt.Errorf("cierre de caja: %w", err)
	}

	esperado := resumen.EfectivoEsperado()
	desvio := arqueo.DesvioCierre(req.MontoContado, esperado)
	clasificacion := arqueo.Clasificar(desvio)

	ahora := time.Now()
	sesion.MontoContado = &req.MontoContado
	sesion.DesgloseCierre = req.Desglose
	sesion.DesvioCierre = &desvio
	sesion.Clasificacion = &clasificacion
	sesion.TotalVentasEfectivo = &resumen.Ventas.Efectivo
	sesion.TotalVentasTransferencia = &resumen.Ventas.Transferencia
	sesion.TotalVentasDebito = &resumen.Ventas.Debito
	sesion.TotalVentasCredito = &resumen.Ventas.Credito
	sesion.TotalRetirosEfectivo = &resumen.Retiros.Efectivo
	sesion.TotalRetirosTransferencia = &resumen.Retiros.Transferencia
	sesion.TotalIngresosEfectivo = &resumen.Ingresos.Efectivo
	sesion.TotalIngresosTransferencia = &resumen.Ingresos.Transferencia
	sesion.ClosedAt = &ahora

	// All closing figures land in one update; after it the session's
	// movements stay queryable for audit but leave "current" aggregation.
	if err := s.repo.CerrarSesion(ctx, sesion); err != nil {
		return nil, err
	}

	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalSesion)
	}
	return s.sesionToResponse(sesion, &esperado), nil
}

// ── Reporte / Historial ──────────────────────────────────────────────────────

func (s *cajaService) Reporte(ctx context.Context, id uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistroNoEncontrado
		}
		return nil, err
	}

	var esperado *decimal.Decimal
	if !sesion.Abierta() {
		e := efectivoEsperadoCerrada(sesion)
		esperado = &e
	}
	return s.sesionToResponse(sesion, esperado), nil
}

func (s *cajaService) ReportePDF(ctx context.Context, id uuid.UUID) (string, error) {
	sesion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRegistroNoEncontrado
		}
		return "", err
	}
	return infra.GenerateArqueoPDF(sesion, s.pdfStoragePath)
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) (*dto.HistorialCajaResponse, error) {
	sesiones, total, err := s.repo.ListCerradas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		e := efectivoEsperadoCerrada(&sesiones[i])
		data = append(data, *s.sesionToResponse(&sesiones[i], &e))
	}
	return &dto.HistorialCajaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) resumenDeSesion(ctx context.Context, sesion *model.SesionCaja) (arqueo.Resumen, error) {
	ventas, err := s.movimientos.VentasDeSesion(ctx, sesion.ID)
	if err != nil {
		return arqueo.Resumen{}, err
	}
	retiros, err := s.movimientos.RetirosDeSesion(ctx, sesion.ID)
	if err != nil {
		return arqueo.Resumen{}, err
	}
	ingresos, err := s.movimientos.IngresosDeSesion(ctx, sesion.ID)
	if err != nil {
		return arqueo.Resumen{}, err
	}
	return aggregator.Resumir(sesion, ventas, retiros, ingresos), nil
}

// efectivoEsperadoCerrada rebuilds expected cash from the totals that were
// denormalized onto the row at close time.
func efectivoEsperadoCerrada(s *model.SesionCaja) decimal.Decimal {
	e := s.MontoInicial
	if s.TotalVentasEfectivo != nil {
		e = e.Add(*s.TotalVentasEfectivo)
	}
	if s.TotalIngresosEfectivo != nil {
		e = e.Add(*s.TotalIngresosEfectivo)
	}
	if s.TotalRetirosEfectivo != nil {
		e = e.Sub(*s.TotalRetirosEfectivo)
	}
	return e
}

func (s *cajaService) sesionToResponse(sesion *model.SesionCaja, esperado *decimal.Decimal) *dto.SesionCajaResponse {
	estado := "abierta"
	if !sesion.Abierta() {
		estado = "cerrada"
	}
	resp := &dto.SesionCajaResponse{
		ID:             sesion.ID.String(),
		UsuarioID:      sesion.UsuarioID.String(),
		MontoInicial:   sesion.MontoInicial,
		DesvioApertura: sesion.DesvioApertura,
		Estado:         estado,
		OpenedAt:       sesion.OpenedAt.Format(time.RFC3339),
	}

	if sesion.Abierta() {
		return resp
	}

	resp.MontoContado = sesion.MontoContado
	resp.EfectivoEsperado = esperado
	resp.DesvioCierre = sesion.DesvioCierre
	resp.Clasificacion = sesion.Clasificacion
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	if sesion.TotalVentasEfectivo != nil {
		resp.Totales = &dto.TotalesCierre{
			Ventas: arqueo.TotalesVentas{
				Efectivo:      *sesion.TotalVentasEfectivo,
				Transferencia: deref(sesion.TotalVentasTransferencia),
				Debito:        deref(sesion.TotalVentasDebito),
				Credito:       deref(sesion.TotalVentasCredito),
			},
			Retiros: arqueo.TotalesMovimiento{
				Efectivo:      deref(sesion.TotalRetirosEfectivo),
				Transferencia: deref(sesion.TotalRetirosTransferencia),
			},
			Ingresos: arqueo.TotalesMovimiento{
				Efectivo:      deref(sesion.TotalIngresosEfectivo),
				Transferencia: deref(sesion.TotalIngresosTransferencia),
			},
		}
	}
	return resp
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
