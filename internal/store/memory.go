package store

import "context"

// MemoryBackend persists nothing. Useful for tests and ephemeral runs.
type MemoryBackend struct{}

func (MemoryBackend) LoadProfiles(context.Context) (map[string]Profile, error) {
	return map[string]Profile{}, nil
}

func (MemoryBackend) StoreProfile(context.Context, Profile, map[string]Profile) error {
	return nil
}

func (MemoryBackend) LoadHistories(context.Context) (map[string][]Turn, error) {
	return map[string][]Turn{}, nil
}

func (MemoryBackend) StoreHistory(context.Context, string, []Turn, map[string][]Turn) error {
	return nil
}

func (MemoryBackend) Close() error { return nil }
