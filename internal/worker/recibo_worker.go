package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibo: sends the customer an email with
// the ticket number and amount, optionally attaching a PDF.

import (
	"context"
	"encoding/json"
	"fmt"

	"lavanderia/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibo.
type ReciboJobPayload struct {
	Email   string `json:"email"`
	Ticket  string `json:"ticket"`
	Monto   string `json:"monto"`
	PDFPath string `json:"pdf_path,omitempty"`
}

type ReciboWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

func NewReciboWorker(mailer *infra.Mailer, rdb *redis.Client) *ReciboWorker {
	return &ReciboWorker{mailer: mailer, rdb: rdb}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recibo_worker: invalid payload")
		return
	}
	if payload.Email == "" {
		log.Warn().Msg("recibo_worker: empty email — skipping")
		return
	}

	subject := fmt.Sprintf("Recibo Lavandería — Ticket %s", payload.Ticket)
	body := fmt.Sprintf("Gracias por tu compra.\nTicket: %s\nTotal: $%s", payload.Ticket, payload.Monto)

	err := withRetry(ctx, 3, func(attempt int) error {
		if err := w.mailer.SendRecibo(payload.Email, subject, body, payload.PDFPath); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("to", payload.Email).
				Msg("recibo_worker: send failed, retrying")
			return err
		}
		return nil
	})
	if err != nil {
		SendToDLQ(ctx, w.rdb, QueueRecibo, "recibo", raw,
			fmt.Sprintf("receipt email failed after 3 attempts: %v", err), 3)
		return
	}

	log.Info().Str("to", payload.Email).Str("ticket", payload.Ticket).Msg("recibo_worker: recibo enviado")
}
