package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	_, ok, err := store.Get(ctx, "alumniData")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "alumniData", "[]"))
	value, ok, err := store.Get(ctx, "alumniData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)

	require.NoError(t, store.Remove(ctx, "alumniData"))
	_, ok, _ = store.Get(ctx, "alumniData")
	assert.False(t, ok)
}

func TestMemoryStoreQuotaCountsOtherKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(20)

	require.NoError(t, store.Set(ctx, "a", "123456789"))
	assert.ErrorIs(t, store.Set(ctx, "b", "1234567890"), ErrQuotaExceeded)

	// Replacing an existing key only counts the new value.
	require.NoError(t, store.Set(ctx, "a", "1234567890123456789"))
	value, _, _ := store.Get(ctx, "a")
	assert.Equal(t, "1234567890123456789", value)
}
