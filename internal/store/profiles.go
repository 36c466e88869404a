package store

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

type Profiles struct {
	mu      sync.Mutex
	backend Backend
	items   map[string]Profile
}

func NewProfiles(backend Backend) *Profiles {
	return &Profiles{
		backend: backend,
		items:   make(map[string]Profile),
	}
}

func (s *Profiles) Load(ctx context.Context) error {
	items, err := s.backend.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if items == nil {
		items = make(map[string]Profile)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Profiles) Get(userID string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[userID]
	return p, ok
}

// Put replaces the profile in memory, then persists it. The in-memory value
// stays updated even when persistence fails.
func (s *Profiles) Put(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[p.UserID] = p
	if err := s.backend.StoreProfile(ctx, p, maps.Clone(s.items)); err != nil {
		return fmt.Errorf("store profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *Profiles) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
