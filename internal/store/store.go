// Package store keeps user profiles and conversation histories in memory as
// the source of truth and writes every mutation through to a Backend.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Profile struct {
	UserID   string
	Name     string
	Gender   string
	LastSeen time.Time
}

type ProfileStore interface {
	Load(ctx context.Context) error
	Get(userID string) (Profile, bool)
	Put(ctx context.Context, p Profile) error
}

type HistoryStore interface {
	Load(ctx context.Context) error
	Get(key string) []Turn
	Put(ctx context.Context, key string, turns []Turn) error
	// Append adds turns and keeps only the newest limit entries.
	Append(ctx context.Context, key string, limit int, turns ...Turn) ([]Turn, error)
}

// Backend persists the in-memory maps. Store calls receive both the changed
// record and a snapshot of every record so document-style backends can
// rewrite the whole file while row-style backends upsert one entry.
type Backend interface {
	LoadProfiles(ctx context.Context) (map[string]Profile, error)
	StoreProfile(ctx context.Context, p Profile, all map[string]Profile) error
	LoadHistories(ctx context.Context) (map[string][]Turn, error)
	StoreHistory(ctx context.Context, key string, turns []Turn, all map[string][]Turn) error
	Close() error
}
