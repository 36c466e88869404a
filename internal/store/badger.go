package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/muratoffalex/manobot/internal/logger"
)

const (
	profilePrefix = "profile:"
	historyPrefix = "history:"
)

// BadgerBackend stores each profile and history under its own key.
type BadgerBackend struct {
	db *badger.DB
}

type badgerProfile struct {
	Name     string    `json:"name"`
	Gender   string    `json:"gender"`
	LastSeen time.Time `json:"last_seen"`
}

func OpenBadger(dir string, inMemory bool, log logger.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(logger.KVAdapter{Logger: log.WithField("component", "badger")})
	if inMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return db, nil
}

func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// DB exposes the handle so other components can share the same database.
func (b *BadgerBackend) DB() *badger.DB {
	return b.db
}

func (b *BadgerBackend) LoadProfiles(context.Context) (map[string]Profile, error) {
	profiles := make(map[string]Profile)
	err := b.scan(profilePrefix, func(id string, val []byte) error {
		var rec badgerProfile
		if err := json.Unmarshal(val, &rec); err != nil {
			return fmt.Errorf("decode profile %s: %w", id, err)
		}
		profiles[id] = Profile{UserID: id, Name: rec.Name, Gender: rec.Gender, LastSeen: rec.LastSeen}
		return nil
	})
	return profiles, err
}

func (b *BadgerBackend) StoreProfile(_ context.Context, p Profile, _ map[string]Profile) error {
	data, err := json.Marshal(badgerProfile{Name: p.Name, Gender: p.Gender, LastSeen: p.LastSeen})
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profilePrefix+p.UserID), data)
	})
}

func (b *BadgerBackend) LoadHistories(context.Context) (map[string][]Turn, error) {
	histories := make(map[string][]Turn)
	err := b.scan(historyPrefix, func(key string, val []byte) error {
		var turns []Turn
		if err := json.Unmarshal(val, &turns); err != nil {
			return fmt.Errorf("decode history %s: %w", key, err)
		}
		histories[key] = turns
		return nil
	})
	return histories, err
}

func (b *BadgerBackend) StoreHistory(_ context.Context, key string, turns []Turn, _ map[string][]Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(historyPrefix+key), data)
	})
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func (b *BadgerBackend) scan(prefix string, fn func(id string, val []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id := strings.TrimPrefix(string(item.Key()), prefix)
			if err := fn(id, val); err != nil {
				return err
			}
		}
		return nil
	})
}
