package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	args := m.Called(ctx, query, limit)
	results, _ := args.Get(0).([]Result)
	return results, args.Error(1)
}

type mockResolver struct{ mock.Mock }

func (m *mockResolver) Resolve(ctx context.Context, source string, profile Profile, quality string) (Link, error) {
	args := m.Called(ctx, source, profile, quality)
	return args.Get(0).(Link), args.Error(1)
}

type mockProber struct{ mock.Mock }

func (m *mockProber) Size(ctx context.Context, url string) (int64, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(int64), args.Error(1)
}

type dataLocalizer struct{}

func (dataLocalizer) Localize(messageID string, data map[string]any) string {
	if len(data) == 0 {
		return messageID
	}
	return fmt.Sprintf("%s %v", messageID, data)
}

// immediateScheduler runs one-shot jobs synchronously.
type immediateScheduler struct {
	mu   sync.Mutex
	jobs []string
}

func (s *immediateScheduler) After(name string, _ time.Duration, job func()) error {
	s.mu.Lock()
	s.jobs = append(s.jobs, name)
	s.mu.Unlock()
	job()
	return nil
}
