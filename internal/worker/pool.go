package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueConciliacion = "jobs:conciliacion"
	QueueEmail        = "jobs:email"
)

const (
	JobRecalculo = "recalculo"
	JobReporte   = "reporte"
)

// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
const MaxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Handler processes the payload of one job type.
type Handler func(ctx context.Context, payload json.RawMessage) error

// errPermanente marks failures that retrying cannot fix.
var errPermanente = errors.New("permanent failure")

// Permanente wraps err so the pool sends the job to the DLQ without retrying.
func Permanente(err error) error {
	return fmt.Errorf("%w: %w", errPermanente, err)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecalculo pushes a reload-and-reconcile job.
func (d *Dispatcher) EnqueueRecalculo(ctx context.Context) (string, error) {
	return d.enqueue(ctx, QueueConciliacion, JobRecalculo, struct{}{})
}

// EnqueueReporte pushes a report-by-email job.
func (d *Dispatcher) EnqueueReporte(ctx context.Context, payload ReporteJobPayload) (string, error) {
	return d.enqueue(ctx, QueueEmail, JobReporte, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC()}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Pool consumes both queues and routes each job to its handler.
type Pool struct {
	rdb        *redis.Client
	handlers   map[string]Handler
	backoff    time.Duration
	deadLetter func(ctx context.Context, queue string, job Job, reason string, attempts int)
}

// NewPool builds a pool with the given handlers keyed by job type.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	p := &Pool{rdb: rdb, handlers: handlers, backoff: time.Second}
	p.deadLetter = func(ctx context.Context, queue string, job Job, reason string, attempts int) {
		SendToDLQ(ctx, p.rdb, queue, job, reason, attempts)
	}
	return p
}

// Start launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueConciliacion, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.deadLetter(ctx, queue, Job{Type: "desconocido", Payload: json.RawMessage(raw)}, err.Error(), 0)
		return
	}
	handler, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		p.deadLetter(ctx, queue, job, "unknown job type", 0)
		return
	}

	log.Info().Str("job_id", job.ID).Str("type", job.Type).Str("queue", queue).Msg("processing job")
	attempts, err := withRetry(ctx, MaxJobAttempts, p.backoff, func(attempt int) error {
		err := handler(ctx, job.Payload)
		if err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Int("attempt", attempt+1).Msg("job attempt failed")
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.deadLetter(ctx, queue, job, err.Error(), attempts)
		return
	}
	log.Info().Str("job_id", job.ID).Str("type", job.Type).Int("attempts", attempts).Msg("job done")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Permanent errors stop at the first attempt. Returns the attempts made.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) (int, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return i + 1, nil
		}
		lastErr = err
		if errors.Is(err, errPermanente) {
			return i + 1, err
		}
	}
	return maxAttempts, lastErr
}
