package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CacheRepository stores raw payloads in batches. MGet returns one entry per
// key in order, nil for a miss.
type CacheRepository interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService wraps a CacheRepository with JSON encoding, metrics and failure logging.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// GetMany reads keys in one round trip and hands every hit to decode. Entries
// that fail to decode are treated as misses. The returned slice reports per key
// whether decode received a value.
func (s *CacheService) GetMany(ctx context.Context, keys []string, decode func(i int, raw []byte) error) ([]bool, error) {
	hits := make([]bool, len(keys))
	if !s.Enabled() || len(keys) == 0 {
		return hits, nil
	}
	start := time.Now()
	values, err := s.repo.MGet(ctx, keys)
	duration := time.Since(start)
	if err != nil {
		s.logger.Warn("cache read failed", zap.Int("keys", len(keys)), zap.Error(err))
		return hits, err
	}
	for i, raw := range values {
		if i >= len(keys) {
			break
		}
		if raw != nil {
			if err := decode(i, raw); err != nil {
				s.logger.Warn("discarding undecodable cache entry", zap.String("key", keys[i]), zap.Error(err))
			} else {
				hits[i] = true
			}
		}
		s.metrics.RecordCacheOperation(hits[i], duration)
	}
	return hits, nil
}

// SetMany stores every value as JSON with a shared TTL.
func (s *CacheService) SetMany(ctx context.Context, values map[string]interface{}, ttl time.Duration) error {
	if !s.Enabled() || len(values) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	entries := make(map[string][]byte, len(values))
	for key, value := range values {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal cache value for %s: %w", key, err)
		}
		entries[key] = payload
	}
	start := time.Now()
	err := s.repo.MSet(ctx, entries, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache write failed", zap.Int("keys", len(entries)), zap.Error(err))
	}
	return err
}

// Delete removes specific keys.
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}
