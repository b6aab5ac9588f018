package authlockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"rngenius/internal/platform/redis"
)

// RedisStore shares failure counts across instances. Keys expire on their
// own, Redis enforces the window.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(key string) string {
	return "lockout:" + key
}

func (s *RedisStore) Count(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, s.key(key)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get lockout count: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, s.key(key))
	pipe.ExpireNX(ctx, s.key(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment lockout count: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("reset lockout count: %w", err)
	}
	return nil
}
