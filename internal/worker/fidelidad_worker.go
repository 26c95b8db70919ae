package worker

// fidelidad_worker.go
// Processes loyalty accrual jobs from QueueFidelidad: sales with an identified
// customer earn points on the external loyalty service. Calls go through the
// circuit breaker so an outage fast-fails instead of piling up timeouts.

import (
	"context"
	"encoding/json"
	"fmt"

	"lavanderia/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxFidelidadAttempts = 3

// FidelidadJobPayload is the job envelope sent to QueueFidelidad.
type FidelidadJobPayload struct {
	VentaID   string `json:"venta_id"`
	ClienteID string `json:"cliente_id"`
	Monto     string `json:"monto"`
	Ticket    string `json:"ticket"`
}

type FidelidadWorker struct {
	client *infra.FidelidadClient
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewFidelidadWorker(client *infra.FidelidadClient, cb *infra.CircuitBreaker, rdb *redis.Client) *FidelidadWorker {
	return &FidelidadWorker{client: client, cb: cb, rdb: rdb}
}

// Process credits the sale on the loyalty service. After three failed
// attempts the job lands in the DLQ for manual inspection.
func (w *FidelidadWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FidelidadJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("fidelidad_worker: invalid payload")
		return
	}

	var resp *infra.FidelidadResponse
	err := withRetry(ctx, maxFidelidadAttempts, func(attempt int) error {
		return w.cb.Execute(func() error {
			r, err := w.client.Acreditar(ctx, infra.FidelidadPayload{
				VentaID:   payload.VentaID,
				ClienteID: payload.ClienteID,
				Monto:     payload.Monto,
				Ticket:    payload.Ticket,
			})
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("venta_id", payload.VentaID).
					Msg("fidelidad_worker: attempt failed, retrying")
				return err
			}
			resp = r
			return nil
		})
	})

	if err != nil {
		SendToDLQ(ctx, w.rdb, QueueFidelidad, "fidelidad", raw,
			fmt.Sprintf("loyalty accrual failed after %d attempts: %v", maxFidelidadAttempts, err),
			maxFidelidadAttempts)
		return
	}

	log.Info().
		Str("venta_id", payload.VentaID).
		Str("cliente_id", payload.ClienteID).
		Int("puntos", resp.PuntosOtorgados).
		Msg("fidelidad_worker: puntos acreditados")
}
