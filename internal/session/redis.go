package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is an ephemeral store shared across gateway replicas. Entries
// carry the same sliding TTL semantics as the in-memory backend; Redis evicts
// them itself, so the sweeper has nothing to do here.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed ephemeral store and verifies connectivity.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisBackend{client: client, ttl: ttl}, nil
}

func redisKey(scope, key string) string {
	return fmt.Sprintf("portal:session:%s:%s", scope, key)
}

// Get returns the value for scope+key, refreshing its TTL.
func (b *RedisBackend) Get(ctx context.Context, scope, key string) (string, bool, error) {
	value, err := b.client.GetEx(ctx, redisKey(scope, key), b.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores the value for scope+key with the configured TTL.
func (b *RedisBackend) Set(ctx context.Context, scope, key, value string) error {
	return b.client.Set(ctx, redisKey(scope, key), value, b.ttl).Err()
}

// Delete removes the given keys for a scope.
func (b *RedisBackend) Delete(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = redisKey(scope, key)
	}
	return b.client.Del(ctx, full...).Err()
}

// Close releases the underlying Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
