package cache

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/logger"
)

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewMemoryCacheWithClock(func() time.Time { return now })

	require.NoError(t, c.Set("a", []byte("1"), time.Second))
	require.NoError(t, c.Set("forever", []byte("2"), 0))

	data, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), data)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("forever")
	assert.True(t, ok)
}

func TestMemoryCachePurge(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewMemoryCacheWithClock(func() time.Time { return now })
	_ = c.Set("a", nil, time.Second)
	_ = c.Set("b", nil, time.Hour)

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Purge())
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestKVCache(t *testing.T) {
	c := NewKVCache(openBadger(t), "user:")

	require.NoError(t, c.Set("1", []byte("Ali"), time.Hour))
	data, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Ali", string(data))

	require.NoError(t, c.Delete("1"))
	_, ok = c.Get("1")
	assert.False(t, ok)

	require.NoError(t, c.Set("2", []byte("Sana"), 0))
	require.NoError(t, c.Clear())
	_, ok = c.Get("2")
	assert.False(t, ok)
}

func TestMultiLevelCachePromotes(t *testing.T) {
	fast := NewMemoryCache()
	persistent := NewKVCache(openBadger(t), "u:")
	c := NewMultiLevelCache(fast, persistent, time.Minute, logger.NewTestLogger())

	require.NoError(t, persistent.Set("k", []byte("v"), 0))
	_, ok := fast.Get("k")
	require.False(t, ok)

	data, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(data))

	_, ok = fast.Get("k")
	assert.True(t, ok)
}

func TestMultiLevelCachePurgesFastTier(t *testing.T) {
	now := time.Unix(0, 0)
	fast := NewMemoryCacheWithClock(func() time.Time { return now })
	c := NewMultiLevelCache(fast, NewKVCache(openBadger(t), "u:"), time.Minute, logger.NewTestLogger())

	require.NoError(t, c.Set("k", []byte("v"), time.Second))
	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Purge())
}
