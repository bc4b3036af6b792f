package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "sporty:session"

// RedisStore keeps values in a Redis hash scoped to one app installation,
// keyed by a caller-chosen scope (usually a device or install identifier).
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store. scope isolates installations
// sharing one Redis instance.
func NewRedisStore(client *redis.Client, scope string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if scope == "" {
		return nil, fmt.Errorf("scope is required")
	}

	return &RedisStore{
		client: client,
		key:    redisKeyPrefix + ":" + scope,
	}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
