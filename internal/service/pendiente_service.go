package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PendienteService manages open tabs. A tab can be created without any open
// session; settling one requires a session because the resulting sale must
// land in a drawer.
type PendienteService interface {
	Crear(ctx context.Context, req dto.CrearPendienteRequest) (*dto.PendienteResponse, error)
	Cobrar(ctx context.Context, id uuid.UUID, req dto.CobrarPendienteRequest) (*dto.VentaResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context) ([]dto.PendienteResponse, error)
}

type pendienteService struct {
	repo        repository.PendienteRepository
	movimientos repository.MovimientoRepository
	caja        CajaService
	prendas     repository.PrendaRepository
	tickets     TicketSequencer
	notificador Notificador
}

func NewPendienteService(
	repo repository.PendienteRepository,
	movimientos repository.MovimientoRepository,
	caja CajaService,
	prendas repository.PrendaRepository,
	tickets TicketSequencer,
	notificador Notificador,
) PendienteService {
	return &pendienteService{
		repo:        repo,
		movimientos: movimientos,
		caja:        caja,
		prendas:     prendas,
		tickets:     tickets,
		notificador: notificador,
	}
}

// Crear opens a tab. The ticket number is issued now, in the same transaction
// as the insert, and keeps identifying the sale after settlement.
func (s *pendienteService) Crear(ctx context.Context, req dto.CrearPendienteRequest) (*dto.PendienteResponse, error) {
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

	var pendiente model.VentaPendiente
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.tickets.Next(ctx, tx)
		if err != nil {
			return err
		}
		pendiente = model.VentaPendiente{
			NumeroTicket: ticket,
			ClienteID:    clienteID,
			Monto:        monto,
			Nota:         req.Nota,
			Items:        items,
		}
		return s.repo.CreateTx(tx, &pendiente)
	})
	if txErr != nil {
		return nil, txErr
	}
	return pendienteToResponse(&pendiente), nil
}

// Cobrar settles a tab: the record migrates into the sales ledger of the
// currently open session, with a fresh timestamp and the payment method chosen
// at settlement. Delete and insert share one transaction; the rows-affected
// check on the delete makes a concurrent double settle record the sale exactly
// once.
func (s *pendienteService) Cobrar(ctx context.Context, id uuid.UUID, req dto.CobrarPendienteRequest) (*dto.VentaResponse, error) {
	sesion, err := s.caja.Abierta(ctx)
	if err != nil {
		return nil, err
	}

	pendiente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistroNoEncontrado
		}
		return nil, err
	}

	items := make([]model.VentaItem, 0, len(pendiente.Items))
	for _, item := range pendiente.Items {
		items = append(items, model.VentaItem{Prenda: item.Prenda, Cantidad: item.Cantidad})
	}

	venta := model.Venta{
		NumeroTicket: pendiente.NumeroTicket,
		SesionCajaID: sesion.ID,
		ClienteID:    pendiente.ClienteID,
		MetodoPago:   req.MetodoPago,
		Monto:        pendiente.Monto,
		Nota:         pendiente.Nota,
		Items:        items,
		CreatedAt:    time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.DeleteTx(tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrRegistroNoEncontrado
		}
		return s.movimientos.CreateVentaTx(tx, &venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notificador != nil {
		s.notificador.Publicar(ctx, aggregator.CanalVentas)
	}
	return ventaToResponse(&venta), nil
}

// Anular voids a tab. Terminal: the ticket number is retired with it.
func (s *pendienteService) Anular(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRegistroNoEncontrado
	}
	return nil
}

func (s *pendienteService) Listar(ctx context.Context) ([]dto.PendienteResponse, error) {
	pendientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PendienteResponse, 0, len(pendientes))
	for i := range pendientes {
		resp = append(resp, *pendienteToResponse(&pendientes[i]))
	}
	return resp, nil
}

func (s *pendienteService) resolverItems(ctx context.Context, items []dto.ItemVentaRequest) (model.ItemsPendientes, decimal.Decimal, error) {
	resolved := make(model.ItemsPendientes, 0, len(items))
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
		resolved = append(resolved, model.ItemPendiente{Prenda: prenda.Nombre, Cantidad: item.Cantidad})
	}
	return resolved, monto, nil
}

func pendienteToResponse(p *model.VentaPendiente) *dto.PendienteResponse {
	items := make([]dto.ItemVentaResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, dto.ItemVentaResponse{Prenda: item.Prenda, Cantidad: item.Cantidad})
	}
	var clienteID *string
	if p.ClienteID != nil {
		cid := p.ClienteID.String()
		clienteID = &cid
	}
	return &dto.PendienteResponse{
		ID:           p.ID.String(),
		NumeroTicket: p.NumeroTicket,
		ClienteID:    clienteID,
		Monto:        p.Monto,
		Nota:         p.Nota,
		Items:        items,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
