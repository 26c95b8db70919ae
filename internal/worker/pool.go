package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFidelidad = "jobs:fidelidad"
	QueueRecibo    = "jobs:recibo"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one dequeued job payload.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb      *redis.Client
	handlers map[string]Handler
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb, handlers: make(map[string]Handler)}
}

// Register binds a queue to its handler. Call before StartWorkerPool.
func (d *Dispatcher) Register(queue string, h Handler) {
	d.handlers[queue] = h
}

// EncolarFidelidad pushes a loyalty accrual job to Redis.
func (d *Dispatcher) EncolarFidelidad(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueFidelidad, "fidelidad", payload)
}

// EncolarRecibo pushes a receipt email job to Redis.
func (d *Dispatcher) EncolarRecibo(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueRecibo, "recibo", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming all registered
// queues. Each goroutine blocks on BRPOP — zero CPU when idle.
func (d *Dispatcher) StartWorkerPool(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(d.handlers))
	for q := range d.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go d.runWorker(ctx, i, queues)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := d.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			d.processJob(ctx, result[0], result[1])
		}
	}
}

func (d *Dispatcher) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	handler, ok := d.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler registered for queue")
		return
	}
	handler.Process(ctx, job.Payload)
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
