package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	ProfilesFile  = "user_data.json"
	HistoriesFile = "chat_history.json"
)

// JSONBackend keeps two documents, one keyed by user ID for profiles and
// one keyed by history key, and rewrites the affected document fully on
// every mutation.
type JSONBackend struct {
	dir string
}

type profileRecord struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	LastSeen int64  `json:"lastSeen"`
}

func NewJSONBackend(dir string) (*JSONBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &JSONBackend{dir: dir}, nil
}

func (b *JSONBackend) LoadProfiles(context.Context) (map[string]Profile, error) {
	records := map[string]profileRecord{}
	if err := b.read(ProfilesFile, &records); err != nil {
		return nil, err
	}

	profiles := make(map[string]Profile, len(records))
	for id, r := range records {
		profiles[id] = Profile{
			UserID:   id,
			Name:     r.Name,
			Gender:   r.Gender,
			LastSeen: time.UnixMilli(r.LastSeen),
		}
	}
	return profiles, nil
}

func (b *JSONBackend) StoreProfile(_ context.Context, _ Profile, all map[string]Profile) error {
	records := make(map[string]profileRecord, len(all))
	for id, p := range all {
		records[id] = profileRecord{
			Name:     p.Name,
			Gender:   p.Gender,
			LastSeen: p.LastSeen.UnixMilli(),
		}
	}
	return b.write(ProfilesFile, records)
}

func (b *JSONBackend) LoadHistories(context.Context) (map[string][]Turn, error) {
	histories := map[string][]Turn{}
	if err := b.read(HistoriesFile, &histories); err != nil {
		return nil, err
	}
	return histories, nil
}

func (b *JSONBackend) StoreHistory(_ context.Context, _ string, _ []Turn, all map[string][]Turn) error {
	return b.write(HistoriesFile, all)
}

func (b *JSONBackend) Close() error { return nil }

func (b *JSONBackend) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the document atomically via a temp file in the same dir.
func (b *JSONBackend) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(b.dir, name))
}
