package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache implements Cache against a single Redis instance,
// retrying the initial ping so the gateway can start before Redis is
// fully up.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache dials addr and retries the initial ping up to 5 times,
// 2 seconds apart.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var pingErr error
	for range 5 {
		if pingErr = client.Ping(ctx).Err(); pingErr == nil {
			break
		}
		<-ticker.C
	}
	if pingErr != nil {
		return nil, fmt.Errorf("store: ping redis at %s: %w", addr, pingErr)
	}

	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
