package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// appendUniqueScript claims the member in the index hash and pushes the value
// as one server-side step.
var appendUniqueScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[2], ARGV[1], '1') == 0 then
	return 0
end
redis.call('RPUSH', KEYS[1], ARGV[2])
return 1
`)

// RedisStore keeps values as Redis strings and lists as Redis lists with a
// hash of their members.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps a connected client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key, IndexKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) AppendUnique(ctx context.Context, key, member string, value []byte) (bool, error) {
	n, err := appendUniqueScript.Run(ctx, s.rdb, []string{key, IndexKey(key)}, member, value).Int()
	if err != nil {
		return false, fmt.Errorf("redis append %s: %w", key, err)
	}
	return n == 1, nil
}

func (s *RedisStore) List(ctx context.Context, key string) ([][]byte, error) {
	vals, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}
