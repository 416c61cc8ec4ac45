package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "kv:v1:"

// RedisStore keeps entries as plain redis strings without expiry.
type RedisStore struct {
	client *redis.Client
	owned  bool
}

// NewRedis wraps an existing client. Close does not close a shared client.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewOwnedRedis wraps client and closes it together with the store.
func NewOwnedRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, owned: true}
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	return nil
}

// Close closes the client when the store owns it.
func (s *RedisStore) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.client.Close()
}
