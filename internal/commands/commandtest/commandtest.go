// Package commandtest wires a container for command tests without network
// access.
package commandtest

import (
	"context"
	"maps"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/ai"
	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/media"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/store"
)

const (
	OwnerID  = "1"
	AdminID  = "2"
	ThreadID = "-100"
)

// Provider answers completions from a fixed list and records every request.
type Provider struct {
	mu       sync.Mutex
	Answers  []string
	Err      error
	Requests []ai.CompletionRequest
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) Complete(_ context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, request)
	if p.Err != nil {
		return nil, p.Err
	}
	answer := ""
	if len(p.Answers) > 0 {
		answer = p.Answers[0]
		if len(p.Answers) > 1 {
			p.Answers = p.Answers[1:]
		}
	}
	return &ai.CompletionResponse{Provider: "stub", Model: request.Model, Content: answer}, nil
}

func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

// Searcher returns Results for every query.
type Searcher struct {
	mu      sync.Mutex
	Results []media.Result
	Queries []string
}

func (s *Searcher) Search(_ context.Context, query string, limit int) ([]media.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	if len(s.Results) > limit {
		return s.Results[:limit], nil
	}
	return s.Results, nil
}

// Resolver fails every tier, so selections end in the unavailable notice.
type Resolver struct{}

func (Resolver) Resolve(context.Context, string, media.Profile, string) (media.Link, error) {
	return media.Link{}, media.ErrUnavailable
}

type Prober struct{}

func (Prober) Size(context.Context, string) (int64, error) { return 0, nil }

type Fixture struct {
	Container *di.Container
	Client    *messenger.MockClient
	Provider  *Provider
	Searcher  *Searcher
	Logger    *logger.TestLogger
}

// New builds a container over the memory backend. overrides are applied on
// top of the defaults.
func New(t *testing.T, overrides map[string]any) *Fixture {
	t.Helper()

	values := map[string]any{
		config.BOT_OWNER_ID:         OwnerID,
		config.BOT_OWNER_NAME:       "Attaullah",
		config.BOT_ADMINS:           []string{AdminID},
		config.STORAGE_DRIVER:       config.StorageMemory,
		config.CHAT_CHAIN:           []string{"stub:chat"},
		config.ASSISTANT_CHAIN:      []string{"stub:companion"},
		config.MEDIA_API_KEY:        "key",
		config.MEDIA_SEND_DELAY:     time.Millisecond,
		config.MEDIA_TEMP_DIRECTORY: t.TempDir(),
	}
	maps.Copy(values, overrides)

	f := &Fixture{
		Client:   messenger.NewMockClient(t),
		Provider: &Provider{},
		Searcher: &Searcher{},
		Logger:   logger.NewTestLogger(),
	}

	registry := ai.NewProviderRegistry(f.Logger)
	registry.RegisterProvider("stub", f.Provider)

	c := &di.Container{
		Client:     f.Client,
		Logger:     f.Logger,
		Cfg:        config.FromMap(values),
		HttpClient: http.DefaultClient,
		Storage:    store.MemoryBackend{},
		AI:         registry,
	}
	require.NoError(t, c.Wire(context.Background()))
	t.Cleanup(c.Close)

	mediaCfg := c.Cfg.Media()
	maxSize, err := mediaCfg.MaxBytes()
	require.NoError(t, err)
	c.Media, err = media.NewService(mediaCfg, media.ServiceDeps{
		Searcher:   f.Searcher,
		Resolver:   Resolver{},
		Prober:     Prober{},
		Downloader: media.NewDownloader(http.DefaultClient, mediaCfg.GetTempDirectory(), maxSize),
		Client:     f.Client,
		Replies:    c.Replies,
		Scheduler:  c.Scheduler,
		Localizer:  c.Localizer,
		Logger:     f.Logger,
	})
	require.NoError(t, err)

	f.Container = c
	return f
}

// Event is a plain group message from userID.
func Event(userID, messageID, body string) messenger.Event {
	return messenger.Event{
		ThreadID:  ThreadID,
		SenderID:  userID,
		MessageID: messageID,
		Body:      body,
	}
}

// AllowReactions accepts any reaction.
func (f *Fixture) AllowReactions() {
	f.Client.EXPECT().React(mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

// KnownUser answers UserInfo for userID with name.
func (f *Fixture) KnownUser(userID, name string) {
	f.Client.EXPECT().UserInfo(mock.Anything, userID).Return(messenger.UserInfo{Name: name}, nil).Maybe()
}

// Sent collects the outgoing texts and answers with sequential IDs
// starting at "m1".
type Sent struct {
	mu    sync.Mutex
	items []messenger.Outgoing
}

func (s *Sent) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, 0, len(s.items))
	for _, o := range s.items {
		texts = append(texts, o.Text)
	}
	return texts
}

func (s *Sent) All() []messenger.Outgoing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]messenger.Outgoing(nil), s.items...)
}

func (f *Fixture) RecordSends() *Sent {
	sent := &Sent{}
	f.Client.EXPECT().Send(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, o messenger.Outgoing) (string, error) {
		sent.mu.Lock()
		defer sent.mu.Unlock()
		sent.items = append(sent.items, o)
		return "m" + strconv.Itoa(len(sent.items)), nil
	}).Maybe()
	return sent
}
