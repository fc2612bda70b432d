package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/model"
)

// ViolationQueue pushes violation events onto the violation log queue.
type ViolationQueue struct {
	rdb *redis.Client
}

func NewViolationQueue(rdb *redis.Client) *ViolationQueue {
	return &ViolationQueue{rdb: rdb}
}

// LogViolation appends v to the queue.
func (q *ViolationQueue) LogViolation(ctx context.Context, v model.Violation) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, raw).Err()
}
