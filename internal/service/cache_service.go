package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
)

const financeCachePrefix = "finance"

// CacheRepository is the key/value backend behind CacheService. Get reports an absent key
// with appErrors.ErrCacheMiss.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts the report cache. When disabled every lookup misses and writes are dropped.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service; ttl falls back to five minutes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger.Named("cache"), enabled: enabled && repo != nil}
}

// keySegment escapes the separator and Redis glob characters so one school's pattern
// can never match another school's keys.
var keySegment = strings.NewReplacer(
	"%", "%25",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"\\", "%5C",
)

// FinanceKey builds a cache key scoped to one school, e.g. finance:<school>:aging:2024-05-01.
func FinanceKey(schoolID, report string, params ...string) string {
	parts := make([]string, 0, len(params)+3)
	parts = append(parts, financeCachePrefix, keySegment.Replace(schoolID), report)
	for _, p := range params {
		parts = append(parts, keySegment.Replace(p))
	}
	return strings.Join(parts, ":")
}

// FinancePattern matches every cached report of a school.
func FinancePattern(schoolID string) string {
	return fmt.Sprintf("%s:%s:*", financeCachePrefix, keySegment.Replace(schoolID))
}

// Enabled reports whether lookups can hit.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled
}

// Get decodes the entry for key into dest and reports whether it was found.
// A miss is not an error.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	began := time.Now()
	err := s.repo.Get(ctx, key, dest)
	switch {
	case err == nil:
		s.metrics.RecordCacheOperation(true, time.Since(began))
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		s.metrics.RecordCacheOperation(false, time.Since(began))
		return false, nil
	default:
		s.metrics.RecordCacheOperation(false, time.Since(began))
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
}

// Set stores value under key. A non-positive ttl uses the service default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	began := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(began))
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every entry matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", pattern, err)
	}
	s.logger.Debug("cache invalidated", zap.String("pattern", pattern))
	return nil
}

// ReadThrough returns the cached value for key, or runs compute and caches its result.
// The boolean is true on a hit. Cache failures are logged and fall through to compute;
// only compute errors are returned.
func ReadThrough[T any](ctx context.Context, c *CacheService, key string, ttl time.Duration, compute func() (T, error)) (T, bool, error) {
	var cached T
	if c.Enabled() {
		hit, err := c.Get(ctx, key, &cached)
		if err != nil {
			c.logger.Warn("cache read failed, recomputing", zap.String("key", key), zap.Error(err))
		} else if hit {
			return cached, true, nil
		}
	}

	value, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	if c.Enabled() {
		if err := c.Set(ctx, key, value, ttl); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, false, nil
}
