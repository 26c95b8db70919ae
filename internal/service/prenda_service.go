package service

import (
	"context"
	"errors"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrendaService interface {
	Crear(ctx context.Context, req dto.CrearPrendaRequest) (*dto.PrendaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPrendaRequest) (*dto.PrendaResponse, error)
	Listar(ctx context.Context) ([]dto.PrendaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type prendaService struct {
	repo repository.PrendaRepository
}

func NewPrendaService(repo repository.PrendaRepository) PrendaService {
	return &prendaService{repo: repo}
}

func (s *prendaService) Crear(ctx context.Context, req dto.CrearPrendaRequest) (*dto.PrendaResponse, error) {
	if req.Precio.IsNegative() {
		return nil, ErrMontoInvalido
	}
	prenda := &model.Prenda{
		Nombre: req.Nombre,
		Precio: req.Precio,
		Activa: true,
	}
	if err := s.repo.Create(ctx, prenda); err != nil {
		return nil, err
	}
	return prendaToResponse(prenda), nil
}

func (s *prendaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPrendaRequest) (*dto.PrendaResponse, error) {
	prenda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistroNoEncontrado
		}
		return nil, err
	}
	if req.Nombre != "" {
		prenda.Nombre = req.Nombre
	}
	if req.Precio != nil {
		if req.Precio.IsNegative() {
			return nil, ErrMontoInvalido
		}
		prenda.Precio = *req.Precio
	}
	if err := s.repo.Update(ctx, prenda); err != nil {
		return nil, err
	}
	return prendaToResponse(prenda), nil
}

func (s *prendaService) Listar(ctx context.Context) ([]dto.PrendaResponse, error) {
	prendas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PrendaResponse, 0, len(prendas))
	for i := range prendas {
		resp = append(resp, *prendaToResponse(&prendas[i]))
	}
	return resp, nil
}

func (s *prendaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func prendaToResponse(p *model.Prenda) *dto.PrendaResponse {
	return &dto.PrendaResponse{
		ID:     p.ID.String(),
		Nombre: p.Nombre,
		Precio: p.Precio,
		Activa: p.Activa,
	}
}
