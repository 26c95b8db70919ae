package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/arqueo"
	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VistaCaja exposes the aggregator's last published snapshot. The withdrawal
// sufficient-cash check reads it instead of re-querying the ledger.
type VistaCaja interface {
	Actual() (arqueo.Resumen, bool)
}

// Despachador enqueues async jobs that run after a sale is durable
// (loyalty accrual, receipt email). Their failure never rolls back a sale.
type Despachador interface {
	EncolarFidelidad(ctx context.Context, payload interface{}) error
	EncolarRecibo(ctx context.Context, payload interface{}) error
}

type MovimientoService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	RegistrarRetiro(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarRetiroRequest) error
	RegistrarIngreso(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarIngresoRequest) error
	EditarNota(ctx context.Context, ventaID uuid.UUID, nota string) error
	ListVentas(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error)
	ListRetiros(ctx context.Context, filter dto.MovimientoFilter) ([]dto.RetiroResponse, error)
	ListIngresos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.IngresoResponse, error)
}

type movimientoService struct {
	repo        repository.MovimientoRepository
	caja        CajaService
	prendas     repository.PrendaRepository
	tickets     TicketSequencer
	vista       VistaCaja
	notificador Notificador
	dispatcher  Despachador
}

func NewMovimientoService(
	repo repository.MovimientoRepository,
	caja CajaService,
	prendas repository.PrendaRepository,
	tickets TicketSequencer,
	vista VistaCaja,
	notificador Notificador,
	dispatcher Despachador,
) MovimientoService {
	return &movimientoService{
		repo:        repo,
		caja:        caja,
		prendas:     prendas,
		tickets:     tickets,
		vista:       vista,
		notificador: notificador,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Flow:
//  1. Require an open session; the sale belongs to it.
//  2. Resolve garments from the catalog and price the sale.
//  3. BEGIN TX: next ticket number, create venta + items. COMMIT.
//  4. Notify the aggregator; enqueue loyalty/receipt jobs (best-effort).
//
// Ticket issuance and sale creation share one transaction, so a crash between
// the two can never emit a ticket without its sale. The consumed number is
// lost on rollback — gaps are fine, duplicates are not.

func (s *movimientoService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	sesion, err := s.caja.Abierta(ctx)
	if err != nil {
		return nil, err
	}

	items, monto, err := s.resolverItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if !monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		clienteID = &cid
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.tickets.Next(ctx, tx)
		if err != nil {
			return err
		}
		venta = model.Venta{
			NumeroTicket: ticket,
			SesionCajaID: sesion.ID,
			ClienteID:    clienteID,
			MetodoPago:   req.MetodoPago,
			Monto:        monto,
			Nota:         req.Nota,
			Items:        items,
		}
		return s.repo.CreateVentaTx(tx, &venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalVentas)
	}
	s.encolarPostVenta(ctx, &venta, req.ClienteEmail)

	return ventaToResponse(&venta), nil
}

// ── RegistrarRetiro ───────────────────────────────────────────────────────────

func (s *movimientoService) RegistrarRetiro(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarRetiroRequest) error {
	if !req.Monto.IsPositive() {
		return ErrMontoInvalido
	}
	sesion, err := s.caja.Abierta(ctx)
	if err != nil {
		return err
	}

	// Cash withdrawals are capped by the drawer's expected cash. The log
	// itself only enforces non-negativity; the balance check lives here,
	// against the live snapshot.
	if req.MetodoPago == model.MetodoEfectivo {
		disponible, err := s.efectivoDisponible(ctx, sesion)
		if err != nil {
			return err
		}
		if req.Monto.GreaterThan(disponible) {
			return ErrEfectivoInsuficiente
		}
	}

	retiro := &model.Retiro{
		SesionCajaID:          sesion.ID,
		Monto:                 req.Monto,
		MetodoPago:            req.MetodoPago,
		CategoriaBeneficiario: req.CategoriaBeneficiario,
		Beneficiario:          req.Beneficiario,
		Motivo:                req.Motivo,
		UsuarioID:             usuarioID,
	}
	if err := s.repo.CreateRetiro(ctx, retiro); err != nil {
		return err
	}
	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalRetiros)
	}
	return nil
}

// ── RegistrarIngreso ──────────────────────────────────────────────────────────

func (s *movimientoService) RegistrarIngreso(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarIngresoRequest) error {
	if !req.Monto.IsPositive() {
		return ErrMontoInvalido
	}
	sesion, err := s.caja.Abierta(ctx)
	if err != nil {
		return err
	}

	ingreso := &model.IngresoManual{
		SesionCajaID: sesion.ID,
		Monto:        req.Monto,
		MetodoPago:   req.MetodoPago,
		Motivo:       req.Motivo,
		UsuarioID:    usuarioID,
	}
	if err := s.repo.CreateIngreso(ctx, ingreso); err != nil {
		return err
	}
	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalIngresos)
	}
	return nil
}

// ── EditarNota ───────────────────────────────────────────────────────────────
// The single mutation allowed on a recorded movement.

func (s *movimientoService) EditarNota(ctx context.Context, ventaID uuid.UUID, nota string) error {
	rows, err := s.repo.UpdateNota(ctx, ventaID, nota)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRegistroNoEncontrado
	}
	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalVentas)
	}
	return nil
}

// ── ListVentas ───────────────────────────────────────────────────────────────

func (s *movimientoService) ListVentas(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	ventas, err := s.repo.QueryVentas(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		resp = append(resp, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func (s *movimientoService) ListRetiros(ctx context.Context, filter dto.MovimientoFilter) ([]dto.RetiroResponse, error) {
	retiros, err := s.repo.QueryRetiros(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RetiroResponse, 0, len(retiros))
	for i := range retiros {
		resp = append(resp, retiroToResponse(&retiros[i]))
	}
	return resp, nil
}

func (s *movimientoService) ListIngresos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.IngresoResponse, error) {
	ingresos, err := s.repo.QueryIngresos(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.IngresoResponse, 0, len(ingresos))
	for i := range ingresos {
		resp = append(resp, ingresoToResponse(&ingresos[i]))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resolverItems prices the sale from the catalog. Only the resolved garment
// name and quantity are stored; the price reference dies here.
func (s *movimientoService) resolverItems(ctx context.Context, items []dto.ItemVentaRequest) ([]model.VentaItem, decimal.Decimal, error) {
	resolved := make([]model.VentaItem, 0, len(items))
	monto := decimal.Zero
	for _, item := range items {
		pid, err := uuid.Parse(item.PrendaID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("prenda_id inválido: %w", err)
		}
		prenda, err := s.prendas.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, fmt.Errorf("%w: prenda %s", ErrRegistroNoEncontrado, item.PrendaID)
			}
			return nil, decimal.Zero, err
		}
		if !prenda.Activa {
			return nil, decimal.Zero, fmt.Errorf("la prenda %s está inactiva", prenda.Nombre)
		}
		monto = monto.Add(prenda.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
		resolved = append(resolved, model.VentaItem{Prenda: prenda.Nombre, Cantidad: item.Cantidad})
	}
	return resolved, monto, nil
}

// efectivoDisponible prefers the aggregator's published snapshot and falls
// back to a direct recompute when the join has not published yet (e.g. right
// after startup) or when the snapshot is flagged Desactualizado: a stale
// figure must not authorize a withdrawal.
func (s *movimientoService) efectivoDisponible(ctx context.Context, sesion *model.SesionCaja) (decimal.Decimal, error) {
	if s.vista != nil {
		if resumen, ok := s.vista.Actual(); ok && !resumen.Cerrada && !resumen.Desactualizado && resumen.SesionID == sesion.ID {
			return resumen.EfectivoEsperado(), nil
		}
	}

	ventas, err := s.repo.VentasDeSesion(ctx, sesion.ID)
	if err != nil {
		return decimal.Zero, err
	}
	retiros, err := s.repo.RetirosDeSesion(ctx, sesion.ID)
	if err != nil {
		return decimal.Zero, err
	}
	ingresos, err := s.repo.IngresosDeSesion(ctx, sesion.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregator.Resumir(sesion, ventas, retiros, ingresos).EfectivoEsperado(), nil
}

// encolarPostVenta fires the out-of-boundary collaborators. Errors are
// swallowed on purpose: the sale is already durable.
func (s *movimientoService) encolarPostVenta(ctx context.Context, venta *model.Venta, email *string) {
	if s.dispatcher == nil {
		return
	}
	if venta.ClienteID != nil {
		_ = s.dispatcher.EncolarFidelidad(ctx, map[string]interface{}{
			"venta_id":   venta.ID.String(),
			"cliente_id": venta.ClienteID.String(),
			"ticket":     venta.NumeroTicket,
			"monto":      venta.Monto.String(),
		})
	}
	if email != nil && *email != "" {
		_ = s.dispatcher.EncolarRecibo(ctx, map[string]interface{}{
			"email":  *email,
			"ticket": venta.NumeroTicket,
			"monto":  venta.Monto.String(),
		})
	}
}

func retiroToResponse(r *model.Retiro) dto.RetiroResponse {
	return dto.RetiroResponse{
		ID:                    r.ID.String(),
		SesionCajaID:          r.SesionCajaID.String(),
		Monto:                 r.Monto,
		MetodoPago:            r.MetodoPago,
		CategoriaBeneficiario: r.CategoriaBeneficiario,
		Beneficiario:          r.Beneficiario,
		Motivo:                r.Motivo,
		CreatedAt:             r.CreatedAt.Format(time.RFC3339),
	}
}

func ingresoToResponse(i *model.IngresoManual) dto.IngresoResponse {
	return dto.IngresoResponse{
		ID:           i.ID.String(),
		SesionCajaID: i.SesionCajaID.String(),
		Monto:        i.Monto,
		MetodoPago:   i.MetodoPago,
		Motivo:       i.Motivo,
		CreatedAt:    i.CreatedAt.Format(time.RFC3339),
	}
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{Prenda: item.Prenda, Cantidad: item.Cantidad})
	}
	var clienteID *string
	if v.ClienteID != nil {
		cid := v.ClienteID.String()
		clienteID = &cid
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		SesionCajaID: v.SesionCajaID.String(),
		ClienteID:    clienteID,
		MetodoPago:   v.MetodoPago,
		Monto:        v.Monto,
		Nota:         v.Nota,
		Items:        items,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}
