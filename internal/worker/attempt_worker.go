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
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptSink is the durable archive behind the worker.
type AttemptSink interface {
	BulkInsert(ctx context.Context, batch []*model.Attempt) error
	Insert(ctx context.Context, a *model.Attempt) error
}

// AttemptWorker drains the archive queue into PostgreSQL in batches.
type AttemptWorker struct {
	sink AttemptSink
	rdb  *redis.Client
	log  zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

func NewAttemptWorker(sink AttemptSink, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		sink:         sink,
		rdb:          rdb,
		log:          log.With().Str("component", "attempt_worker").Logger(),
		batchSize:    AttemptBatchSize,
		batchTimeout: AttemptBatchTimeout,
		pollTimeout:  AttemptPollTimeout,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]*model.Attempt, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.Attempt
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []*model.Attempt) {
	if len(batch) == 0 {
		return
	}

	if err := w.sink.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk attempt insert failed, using fallback")

		for _, a := range batch {
			if err := w.sink.Insert(ctx, a); err != nil {
				w.log.Error().Err(err).Str("attempt_id", a.ID).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(a)
				w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Archived attempts")
}
