package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/store"
)

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "test.db")

	backend, err := NewSQLiteDB(dsn, logger.NewTestLogger())
	require.NoError(t, err)

	profiles := store.NewProfiles(backend)
	require.NoError(t, profiles.Load(ctx))
	require.NoError(t, profiles.Put(ctx, store.Profile{UserID: "7", Name: "Hamza", Gender: "boy", LastSeen: time.UnixMilli(99)}))
	require.NoError(t, profiles.Put(ctx, store.Profile{UserID: "7", Name: "Hamza Ali", Gender: "boy", LastSeen: time.UnixMilli(100)}))

	histories := store.NewHistories(backend)
	for i := range 20 {
		_, err := histories.Append(ctx, "7", 15, store.Turn{Role: store.RoleUser, Content: string(rune('a' + i))})
		require.NoError(t, err)
	}
	require.NoError(t, backend.Close())

	reopened, err := NewSQLiteDB(dsn, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded := store.NewProfiles(reopened)
	require.NoError(t, loaded.Load(ctx))
	p, ok := loaded.Get("7")
	require.True(t, ok)
	assert.Equal(t, "Hamza Ali", p.Name)
	assert.Equal(t, int64(100), p.LastSeen.UnixMilli())

	loadedHistories := store.NewHistories(reopened)
	require.NoError(t, loadedHistories.Load(ctx))
	got := loadedHistories.Get("7")
	require.Len(t, got, 15)
	assert.Equal(t, "f", got[0].Content)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, err := RunMigrations(ctx, db.DB, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	version, err = RunMigrations(ctx, db.DB, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}
