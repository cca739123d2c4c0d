package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository stores weekly statistics payloads in Redis.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// MGet fetches keys with a single MGET. Missing keys come back as nil entries.
func (r *CacheRepository) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if r.client == nil || len(keys) == 0 {
		return out, nil
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget %d keys: %w", len(keys), err)
	}
	for i, v := range values {
		switch typed := v.(type) {
		case string:
			out[i] = []byte(typed)
		case []byte:
			out[i] = typed
		}
	}
	return out, nil
}

// MSet writes every entry with the same TTL in one pipelined round trip.
func (r *CacheRepository) MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if r.client == nil || len(entries) == 0 {
		return nil
	}
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, payload := range entries {
			pipe.Set(ctx, key, payload, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis pipelined set %d keys: %w", len(entries), err)
	}
	return nil
}

// Delete removes the given keys.
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if r.client == nil || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete %d keys: %w", len(keys), err)
	}
	r.logger.Debug("cache keys deleted", zap.Strings("keys", keys))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
