// Package database is the SQLite storage backend.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/store"
)

type sqliteDB struct {
	db     *sqlx.DB
	logger logger.Logger
}

type profileRow struct {
	UserID   string `db:"user_id"`
	Name     string `db:"name"`
	Gender   string `db:"gender"`
	LastSeen int64  `db:"last_seen"`
}

type historyRow struct {
	Key   string `db:"history_key"`
	Turns string `db:"turns"`
}

func NewSQLiteDB(dsn string, log logger.Logger) (store.Backend, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.WithField("dsn", dsn).Debug("Database opened")

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	version, err := RunMigrations(context.Background(), db.DB, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("schema_version", version).Debug("Database migrated")

	return &sqliteDB{db: db, logger: log}, nil
}

func (s *sqliteDB) LoadProfiles(ctx context.Context) (map[string]store.Profile, error) {
	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT user_id, name, gender, last_seen FROM profiles`); err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}

	profiles := make(map[string]store.Profile, len(rows))
	for _, r := range rows {
		profiles[r.UserID] = store.Profile{
			UserID:   r.UserID,
			Name:     r.Name,
			Gender:   r.Gender,
			LastSeen: time.UnixMilli(r.LastSeen),
		}
	}
	return profiles, nil
}

func (s *sqliteDB) StoreProfile(ctx context.Context, p store.Profile, _ map[string]store.Profile) error {
	_, err := s.execWithRetry(ctx, `
		INSERT INTO profiles (user_id, name, gender, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			gender = excluded.gender,
			last_seen = excluded.last_seen,
			updated_at = CURRENT_TIMESTAMP
	`, p.UserID, p.Name, p.Gender, p.LastSeen.UnixMilli())
	return err
}

func (s *sqliteDB) LoadHistories(ctx context.Context) (map[string][]store.Turn, error) {
	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT history_key, turns FROM histories`); err != nil {
		return nil, fmt.Errorf("failed to query histories: %w", err)
	}

	histories := make(map[string][]store.Turn, len(rows))
	for _, r := range rows {
		var turns []store.Turn
		if err := json.Unmarshal([]byte(r.Turns), &turns); err != nil {
			s.logger.WithError(err).WithField("key", r.Key).Warn("Skipping unreadable history")
			continue
		}
		histories[r.Key] = turns
	}
	return histories, nil
}

func (s *sqliteDB) StoreHistory(ctx context.Context, key string, turns []store.Turn, _ map[string][]store.Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	_, err = s.execWithRetry(ctx, `
		INSERT INTO histories (history_key, turns)
		VALUES (?, ?)
		ON CONFLICT(history_key) DO UPDATE SET
			turns = excluded.turns,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	return err
}

func (s *sqliteDB) Close() error {
	return s.db.Close()
}

func (s *sqliteDB) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	var err error
	for i := range 3 {
		res, err = s.db.ExecContext(ctx, query, args...)
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			return res, err
		}
		s.logger.WithField("attempt", i+1).Warn("Database locked, retrying...")
		time.Sleep(100 * time.Millisecond * time.Duration(i+1))
	}
	return res, err
}
