package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisEngine struct {
	redis *redis.Client
}

func (e *redisEngine) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return e.redis.SetEx(ctx, key, value, ttl).Err()
}

func (e *redisEngine) Fetch(ctx context.Context, key string) ([]byte, error) {
	value, err := e.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}
