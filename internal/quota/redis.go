package quota

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisStore implements schema.CounterStore on a Redis client.
// INCR provides the atomic increment that serializes concurrent checks
// for the same key.
type RedisStore struct {
	client *backend.Client
}

// NewRedisStore creates a RedisStore connecting to addr.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{client: backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewRedisStoreFromClient wraps an existing client (used by tests).
func NewRedisStoreFromClient(client *backend.Client) *RedisStore {
	return &RedisStore{client: client}
}

// IncrementAndGet implements schema.CounterStore. When INCR created the
// key (returned count is 1) the ttl is attached in a follow-up EXPIRE;
// the record then expires at the period boundary on its own.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, ttlIfNew time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}

	if count == 1 && ttlIfNew > 0 {
		if err := s.client.Expire(ctx, key, ttlIfNew).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	return count, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
