package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFinanceKeyEscapesGlobCharacters(t *testing.T) {
	assert.Equal(t, "finance:school-1:aging:2024-05-11", FinanceKey("school-1", "aging", "2024-05-11"))
	assert.Equal(t, "finance:a%2A:summary:1%3A2", FinanceKey("a*", "summary", "1:2"))
	assert.Equal(t, "finance:a%2A:*", FinancePattern("a*"))
}

func TestCacheServiceDisabledSkipsRepository(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "finance:s:aging", map[string]int{"a": 1}, 0))
	var dest map[string]int
	hit, err := cache.Get(ctx, "finance:s:aging", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.store)
}

func TestCacheServiceRoundTripRecordsMetrics(t *testing.T) {
	repo := &memoryCacheRepo{}
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := cache.Get(ctx, "finance:s:aging", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "finance:s:aging", map[string]int{"a": 1}, 0))
	hit, err = cache.Get(ctx, "finance:s:aging", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["a"])

	require.NoError(t, cache.Invalidate(ctx, FinancePattern("s")))
	assert.Empty(t, repo.store)
}

type brokenCacheRepo struct{ sets int }

func (b *brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis: connection pool timeout")
}

func (b *brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	b.sets++
	return errors.New("redis: connection pool timeout")
}

func (b *brokenCacheRepo) DeleteByPattern(context.Context, string) error { return nil }

func TestReadThroughFallsBackWhenCacheFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := &brokenCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.New(core), true)

	calls := 0
	value, hit, err := ReadThrough(context.Background(), cache, "finance:s:aging", 0, func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, repo.sets)
	assert.Equal(t, 2, logs.Len())
}

func TestReadThroughReturnsComputeError(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	_, _, err := ReadThrough(context.Background(), cache, "finance:s:aging", 0, func() (string, error) {
		return "", errors.New("load failed")
	})
	assert.EqualError(t, err, "load failed")
	assert.Empty(t, repo.store)

	var nilCache *CacheService
	v, hit, err := ReadThrough(context.Background(), nilCache, "k", 0, func() (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "x", v)
}
