package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore guards the payment execution callback: the provider may
// redeliver the success redirect, and executing a payment twice must never
// reach the gateway a second time.
type IdempotencyStore interface {
	// Begin claims the key atomically. It returns false when the key is
	// already claimed by an earlier execution.
	Begin(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Clear releases the key so a failed execution can be retried.
	Clear(ctx context.Context, key string) error
}

type redisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

func (s *redisIdempotencyStore) getKey(key string) string {
	return "idem:payment:" + key
}

func (s *redisIdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.getKey(key), "1", ttl).Result()
}

func (s *redisIdempotencyStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.getKey(key)).Err()
}
