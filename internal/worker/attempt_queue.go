package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
)

// AttemptQueue pushes recorded attempts onto the archive queue.
type AttemptQueue struct {
	rdb *redis.Client
}

// NewAttemptQueue creates a new AttemptQueue.
func NewAttemptQueue(rdb *redis.Client) *AttemptQueue {
	return &AttemptQueue{rdb: rdb}
}

// Enqueue appends attempt to the archive queue.
func (q *AttemptQueue) Enqueue(ctx context.Context, attempt *model.Attempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
}
