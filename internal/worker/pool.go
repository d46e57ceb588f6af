package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFechamento = "jobs:fechamento"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// FechamentoJobPayload carries the closing summary of a just-closed session.
type FechamentoJobPayload struct {
	SessaoID      string `json:"sessao_id"`
	OperadorID    string `json:"operador_id"`
	SaldoApurado  string `json:"saldo_apurado"`
	Diferenca     string `json:"diferenca"`
	Classificacao string `json:"classificacao"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFechamento pushes a closing-summary job to Redis. Best effort: the
// session close already committed, so failures here are only logged upstream.
func (d *Dispatcher) EnqueueFechamento(ctx context.Context, payload FechamentoJobPayload) error {
	return d.enqueue(ctx, QueueFechamento, "fechamento", payload)
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

// Handler processes one job payload; returning an error triggers a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers maps queues to their processors, wired at the composition root.
type Handlers struct {
	Fechamento Handler
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueFechamento}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var handler Handler
	switch queue {
	case QueueFechamento:
		handler = handlers.Fechamento
	}
	if handler == nil {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for job")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		if encoded, mErr := json.Marshal(job); mErr == nil {
			_ = rdb.LPush(ctx, queue, encoded).Err()
		}
		log.Warn().Str("type", job.Type).Int("attempts", job.Attempts).Err(err).Msg("job failed, re-enqueued")
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}
