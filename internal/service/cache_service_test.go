package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceRemember(t *testing.T) {
	cache, mr := newTestCache(t, nil)
	ctx := context.Background()
	calls := 0
	compute := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"Physics", "Chemistry"}
			return nil
		}
	}

	var first []string
	hit, err := cache.Remember(ctx, "dash:test", time.Minute, &first, compute(&first))
	require.NoError(t, err)
	assert.False(t, hit)

	var second []string
	hit, err = cache.Remember(ctx, "dash:test", time.Minute, &second, compute(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, cache.Invalidate(ctx, "dash:*"))
	assert.False(t, mr.Exists("alumni-hub:dash:test"))
}

func TestCacheServiceRememberPropagatesComputeError(t *testing.T) {
	cache, mr := newTestCache(t, nil)
	boom := errors.New("boom")

	var dest []string
	_, err := cache.Remember(context.Background(), "dash:err", 0, &dest, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("alumni-hub:dash:err"))
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())

	disabled := NewCacheService(nil, nil, nil, CacheServiceConfig{})
	hit, err := disabled.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, disabled.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, disabled.Invalidate(context.Background(), "*"))
}
