package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedCache(ttl time.Duration) (*Cache, *time.Time) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c := New(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGetExpiry(t *testing.T) {
	c, now := newClockedCache(5 * time.Minute)

	c.Set("stats", 42)
	v, ok := c.Get("stats")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	*now = now.Add(6 * time.Minute)
	_, ok = c.Get("stats")
	assert.False(t, ok)
}

func TestCache_GetOrLoad(t *testing.T) {
	c, _ := newClockedCache(time.Minute)

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return "plan", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("plan:u1", load)
		require.NoError(t, err)
		assert.Equal(t, "plan", v)
	}
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newClockedCache(time.Minute)

	boom := errors.New("db down")
	_, err := c.GetOrLoad("k", func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get("k")
	assert.False(t, ok, "failed loads must not poison the cache")
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	c, now := newClockedCache(time.Minute)

	c.Set("old", 1)
	*now = now.Add(2 * time.Minute)
	c.Set("fresh", 2)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newClockedCache(time.Minute)
	c.Set("k", 1)
	c.Invalidate("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}
