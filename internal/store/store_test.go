package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/logger"
)

func turnPair(i int) []Turn {
	return []Turn{
		{Role: RoleUser, Content: fmt.Sprintf("Ali: q%d", i)},
		{Role: RoleAssistant, Content: fmt.Sprintf("a%d", i)},
	}
}

func TestHistoriesBoundedFIFO(t *testing.T) {
	ctx := context.Background()
	h := NewHistories(MemoryBackend{})
	const limit = 15

	for k := 1; k <= 5; k++ {
		h := NewHistories(MemoryBackend{})
		total := limit + k
		for i := range total {
			_, err := h.Append(ctx, "u1", limit, Turn{Role: RoleUser, Content: fmt.Sprint(i)})
			require.NoError(t, err)
		}
		got := h.Get("u1")
		require.Len(t, got, limit)
		assert.Equal(t, fmt.Sprint(k), got[0].Content, "oldest entries are dropped first")
		assert.Equal(t, fmt.Sprint(total-1), got[limit-1].Content)
	}

	t.Run("pairs keep order", func(t *testing.T) {
		for i := range 10 {
			_, err := h.Append(ctx, "u2", limit, turnPair(i)...)
			require.NoError(t, err)
		}
		got := h.Get("u2")
		require.Len(t, got, limit)
		assert.Equal(t, RoleAssistant, got[0].Role)
		assert.Equal(t, "a9", got[limit-1].Content)
	})
}

func TestHistoriesGetReturnsCopy(t *testing.T) {
	h := NewHistories(MemoryBackend{})
	_, err := h.Append(context.Background(), "k", 5, Turn{Role: RoleUser, Content: "x"})
	require.NoError(t, err)

	got := h.Get("k")
	got[0].Content = "mutated"
	assert.Equal(t, "x", h.Get("k")[0].Content)
}

func TestTruncate(t *testing.T) {
	turns := append(turnPair(1), turnPair(2)...)
	assert.Len(t, Truncate(turns, 0), 4)
	assert.Len(t, Truncate(turns, 10), 4)
	assert.Equal(t, turnPair(2), Truncate(turns, 2))
}

func backends(t *testing.T) map[string]func() Backend {
	dir := t.TempDir()
	badgerDB, err := OpenBadger("", true, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerDB.Close() })

	return map[string]func() Backend{
		"json": func() Backend {
			b, err := NewJSONBackend(dir)
			require.NoError(t, err)
			return b
		},
		"badger": func() Backend { return NewBadgerBackend(badgerDB) },
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	seen := time.UnixMilli(1_700_000_000_000)

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			profiles := NewProfiles(open())
			require.NoError(t, profiles.Load(ctx))
			require.NoError(t, profiles.Put(ctx, Profile{UserID: "1", Name: "Sana", Gender: "girl", LastSeen: seen}))
			require.NoError(t, profiles.Put(ctx, Profile{UserID: "2", Name: "Bilal", Gender: "boy", LastSeen: seen}))

			histories := NewHistories(open())
			require.NoError(t, histories.Load(ctx))
			_, err := histories.Append(ctx, "1", 15, turnPair(1)...)
			require.NoError(t, err)

			reloadedProfiles := NewProfiles(open())
			require.NoError(t, reloadedProfiles.Load(ctx))
			p, ok := reloadedProfiles.Get("1")
			require.True(t, ok)
			assert.Equal(t, "Sana", p.Name)
			assert.Equal(t, "girl", p.Gender)
			assert.True(t, seen.Equal(p.LastSeen))
			assert.Equal(t, 2, reloadedProfiles.Len())

			reloadedHistories := NewHistories(open())
			require.NoError(t, reloadedHistories.Load(ctx))
			assert.Equal(t, turnPair(1), reloadedHistories.Get("1"))
		})
	}
}

func TestJSONBackendDocumentShape(t *testing.T) {
	dir := t.TempDir()
	b, err := NewJSONBackend(dir)
	require.NoError(t, err)

	profiles := NewProfiles(b)
	require.NoError(t, profiles.Put(context.Background(), Profile{UserID: "42", Name: "Amna", Gender: "girl", LastSeen: time.UnixMilli(5)}))

	data, err := os.ReadFile(filepath.Join(dir, ProfilesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"42":{"name":"Amna","gender":"girl","lastSeen":5}}`, string(data))
}

func TestJSONBackendRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, HistoriesFile), []byte("{oops"), 0o600))

	b, err := NewJSONBackend(dir)
	require.NoError(t, err)
	err = NewHistories(b).Load(context.Background())
	assert.ErrorContains(t, err, HistoriesFile)
}
