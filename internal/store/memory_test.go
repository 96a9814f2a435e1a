package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "key", "value", time.Minute))

	value, found, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", value)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, "key", "value", time.Minute))

	s.SetClock(func() time.Time { return now.Add(61 * time.Second) })

	_, found, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })
	require.NoError(t, s.Set(ctx, "key", "value", 0))

	s.SetClock(func() time.Time { return now.Add(24 * time.Hour) })

	_, found, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryStoreSetNX(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	won, err := s.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.SetNX(ctx, "lock", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, won)

	value, found, err := s.Get(ctx, "lock")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", value)
}

func TestMemoryStoreSetNXAfterExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	won, err := s.SetNX(ctx, "lock", "1", time.Second)
	require.NoError(t, err)
	require.True(t, won)

	s.SetClock(func() time.Time { return now.Add(2 * time.Second) })

	won, err = s.SetNX(ctx, "lock", "2", time.Second)
	require.NoError(t, err)
	assert.True(t, won)
}

func TestMemoryStoreIncrWithTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		count, err := s.IncrWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestMemoryStoreIncrWindowReset(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	count, err := s.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = s.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	// The TTL is attached at creation, not refreshed per increment.
	s.SetClock(func() time.Time { return now.Add(61 * time.Second) })

	count, err = s.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStoreDel(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, s.Del(ctx, "key"))

	_, found, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStorePing(t *testing.T) {
	assert.NoError(t, NewMemoryStore().Ping(context.Background()))
}
