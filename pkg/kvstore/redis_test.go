package kvstore

import (
	"context"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, limit int64) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mini.Addr()}), limit)
	t.Cleanup(func() { _ = store.Close() })
	return store, mini
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mini := newRedisStore(t, 0)

	_, ok, err := store.Get(ctx, "alumniData")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "alumniData", "[]"))
	stored, err := mini.Get("alumniData")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
	assert.Zero(t, mini.TTL("alumniData"))

	value, ok, err := store.Get(ctx, "alumniData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)

	require.NoError(t, store.Remove(ctx, "alumniData"))
	assert.False(t, mini.Exists("alumniData"))
}

func TestRedisStoreQuota(t *testing.T) {
	store, mini := newRedisStore(t, 8)

	err := store.Set(context.Background(), "alumniData", strings.Repeat("x", 9))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.False(t, mini.Exists("alumniData"))
}

func TestRedisStoreConnectionFailure(t *testing.T) {
	store, mini := newRedisStore(t, 0)
	mini.Close()

	_, _, err := store.Get(context.Background(), "alumniData")
	assert.Error(t, err)
}
