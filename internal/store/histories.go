package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type Histories struct {
	mu      sync.Mutex
	backend Backend
	items   map[string][]Turn
}

func NewHistories(backend Backend) *Histories {
	return &Histories{
		backend: backend,
		items:   make(map[string][]Turn),
	}
}

func (s *Histories) Load(ctx context.Context) error {
	items, err := s.backend.LoadHistories(ctx)
	if err != nil {
		return fmt.Errorf("load histories: %w", err)
	}
	if items == nil {
		items = make(map[string][]Turn)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Histories) Get(key string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items[key])
}

func (s *Histories) Put(ctx context.Context, key string, turns []Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(ctx, key, slices.Clone(turns))
}

func (s *Histories) Append(ctx context.Context, key string, limit int, turns ...Turn) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(slices.Clone(s.items[key]), turns...)
	history = Truncate(history, limit)

	if err := s.storeLocked(ctx, key, history); err != nil {
		return slices.Clone(history), err
	}
	return slices.Clone(history), nil
}

func (s *Histories) storeLocked(ctx context.Context, key string, turns []Turn) error {
	s.items[key] = turns

	snapshot := make(map[string][]Turn, len(s.items))
	for k, v := range s.items {
		snapshot[k] = slices.Clone(v)
	}
	if err := s.backend.StoreHistory(ctx, key, slices.Clone(turns), snapshot); err != nil {
		return fmt.Errorf("store history %s: %w", key, err)
	}
	return nil
}

// Truncate keeps the newest limit turns. A non-positive limit keeps all.
func Truncate(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return slices.Clone(turns[len(turns)-limit:])
}
