package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
)

const (
	ViolationBatchSize    = 100
	ViolationBatchTimeout = 2 * time.Second
	ViolationPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
	violationRetryBackoff = 2 * time.Second
)

// ViolationSink stores violation events.
type ViolationSink interface {
	CopyViolations(ctx context.Context, batch []*model.Violation) (int64, error)
	InsertViolation(ctx context.Context, v *model.Violation) error
}

// ViolationWorker moves queued violation events into PostgreSQL.
type ViolationWorker struct {
	sink ViolationSink
	rdb  *redis.Client
	log  zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
	retryBackoff time.Duration
}

func NewViolationWorker(sink ViolationSink, rdb *redis.Client, log zerolog.Logger) *ViolationWorker {
	return &ViolationWorker{
		sink:         sink,
		rdb:          rdb,
		log:          log.With().Str("component", "violation_worker").Logger(),
		batchSize:    ViolationBatchSize,
		batchTimeout: ViolationBatchTimeout,
		pollTimeout:  ViolationPollTimeout,
		retryBackoff: violationRetryBackoff,
	}
}

func (w *ViolationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ViolationWorker started")

	buffer := make([]*model.Violation, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistViolationsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, backing off")
			sleepCtx(ctx, w.retryBackoff)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var v model.Violation
		if err := json.Unmarshal([]byte(result[1]), &v); err != nil {
			// Malformed payloads cannot be retried.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed violation")
			continue
		}

		buffer = append(buffer, &v)
	}
}

// flushSafe copies the batch in one round trip and falls back to row inserts,
// requeueing the rows that still fail.
func (w *ViolationWorker) flushSafe(ctx context.Context, batch []*model.Violation) {
	n, err := w.sink.CopyViolations(ctx, batch)
	if err == nil {
		w.log.Debug().Int64("rows", n).Msg("Copied violations")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk copy failed, attempting row-by-row recovery")

	requeue := make([]*model.Violation, 0)
	for _, v := range batch {
		if err := w.sink.InsertViolation(ctx, v); err != nil {
			w.log.Error().Err(err).Str("student_id", v.StudentID).Msg("Insert failed, requeueing")
			requeue = append(requeue, v)
		}
	}
	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
}

func (w *ViolationWorker) requeue(ctx context.Context, items []*model.Violation) {
	pipe := w.rdb.Pipeline()
	for _, v := range items {
		data, _ := json.Marshal(v)
		pipe.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue violations. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed violations")
	sleepCtx(ctx, w.retryBackoff)
}

func (w *ViolationWorker) shutdown(buffer []*model.Violation) {
	w.log.Info().Int("pending", len(buffer)).Msg("Worker stopping, flushing remaining buffer...")
	if len(buffer) == 0 {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.flushSafe(shutdownCtx, buffer)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
