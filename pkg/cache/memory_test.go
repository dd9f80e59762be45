package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	now = now.Add(240 * time.Hour)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIncrByCreatesAndAccumulates(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	n, err := c.IncrBy(ctx, "counter", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = c.IncrBy(ctx, "counter", 4, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestIncrByRestartsAfterExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	_, err := c.IncrBy(ctx, "counter", 5, time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	n, err := c.IncrBy(ctx, "counter", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "expired counter restarts from zero")
}

func TestIncrByKeepsOriginalExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	_, err := c.IncrBy(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)

	// Later increments must not slide the window forward.
	now = now.Add(30 * time.Second)
	_, err = c.IncrBy(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, ok, err := c.Get(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, ok)
}
