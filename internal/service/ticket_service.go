package service

import (
	"context"
	"fmt"

	"lavanderia/internal/model"
	"lavanderia/internal/repository"

	"gorm.io/gorm"
)

// anchoTicket is the fixed width of formatted ticket numbers: "000042".
const anchoTicket = 6

// TicketSequencer issues unique, strictly increasing ticket numbers.
// Called once per sale-creation attempt, including deferred sales, and
// always inside the transaction that creates the sale record so a crash
// can never leave a ticket without its sale.
type TicketSequencer interface {
	Next(ctx context.Context, tx *gorm.DB) (string, error)
}

type ticketSequencer struct {
	contadores repository.ContadorRepository
}

func NewTicketSequencer(contadores repository.ContadorRepository) TicketSequencer {
	return &ticketSequencer{contadores: contadores}
}

func (s *ticketSequencer) Next(ctx context.Context, tx *gorm.DB) (string, error) {
	n, err := s.contadores.Incrementar(ctx, tx, model.NombreContadorTicket)
	if err != nil {
		// Never degrade to read-then-write: on failure the sequence simply
		// did not advance and the caller retries the whole attempt.
		return "", fmt.Errorf("%w: %v", ErrSecuenciaNoDisponible, err)
	}
	return fmt.Sprintf("%0*d", anchoTicket, n), nil
}
