package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/commandtest"
	"github.com/muratoffalex/manobot/internal/commands/help"
	"github.com/muratoffalex/manobot/internal/commands/youtube"
	"github.com/muratoffalex/manobot/internal/media"
	"github.com/muratoffalex/manobot/internal/messenger"
)

type listenerFunc struct {
	name   string
	listen func(ev messenger.Event) bool
	seen   []string
}

func (l *listenerFunc) Name() string      { return l.name }
func (l *listenerFunc) Aliases() []string { return nil }

func (l *listenerFunc) Handle(ctx context.Context, req commands.Request) error {
	return l.Execute(ctx, req)
}

func (l *listenerFunc) Execute(context.Context, commands.Request) error { return nil }

func (l *listenerFunc) Listen(_ context.Context, ev messenger.Event) (bool, error) {
	l.seen = append(l.seen, ev.Body)
	return l.listen(ev), nil
}

func newBot(t *testing.T) (*Bot, *commandtest.Fixture) {
	t.Helper()
	f := commandtest.New(t, nil)
	c := f.Container
	return NewBot(c.Client, c.Commands, c.Replies, c.Cfg.Bot().CommandPrefix, f.Logger), f
}

func TestParseCommand(t *testing.T) {
	b := &Bot{prefix: "/"}

	name, args, ok := b.parseCommand("/YT@manobot despacito remix")
	require.True(t, ok)
	assert.Equal(t, "yt", name)
	assert.Equal(t, []string{"despacito", "remix"}, args)

	_, _, ok = b.parseCommand("mano /yt")
	assert.False(t, ok)
	_, _, ok = b.parseCommand("/")
	assert.False(t, ok)
	_, _, ok = b.parseCommand("/@bot")
	assert.False(t, ok)
}

func TestDispatchPrefixedCommandByAlias(t *testing.T) {
	b, f := newBot(t)
	f.Searcher.Results = []media.Result{{Title: "Despacito", URL: "https://youtube.com/watch?v=1"}}
	sent := f.RecordSends()
	b.RegisterCommand(youtube.NewVideo(f.Container))

	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e1", "/yt despacito")))

	assert.Equal(t, []string{"despacito"}, f.Searcher.Queries)
	require.Len(t, sent.Texts(), 1)
	assert.Contains(t, sent.Texts()[0], "1. Despacito")
}

func TestDispatchIgnoresUnknownCommand(t *testing.T) {
	b, f := newBot(t)
	b.RegisterCommand(help.New(f.Container))
	l := &listenerFunc{name: "l", listen: func(messenger.Event) bool { return true }}
	b.RegisterCommand(l)

	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e1", "/nope")))

	assert.Empty(t, l.seen)
	f.Client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatchTrackedReplyGoesToOwner(t *testing.T) {
	b, f := newBot(t)
	f.Searcher.Results = []media.Result{{Title: "Despacito", URL: "https://youtube.com/watch?v=1"}}
	sent := f.RecordSends()
	b.RegisterCommand(youtube.NewMusic(f.Container))
	l := &listenerFunc{name: "l", listen: func(messenger.Event) bool { return true }}
	b.RegisterCommand(l)

	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e1", "/music despacito")))

	reply := commandtest.Event("5", "e2", "7")
	reply.RepliedToMessageID = "m1"
	reply.IsReplyToBot = true
	require.NoError(t, b.Dispatch(context.Background(), reply))

	assert.Equal(t, "❌ Please reply with a number between 1 and 1.", sent.Texts()[1])
	assert.Empty(t, l.seen)
}

func TestDispatchReplyFromOtherUserFallsThrough(t *testing.T) {
	b, f := newBot(t)
	f.Searcher.Results = []media.Result{{Title: "Despacito", URL: "https://youtube.com/watch?v=1"}}
	sent := f.RecordSends()
	b.RegisterCommand(youtube.NewMusic(f.Container))
	l := &listenerFunc{name: "l", listen: func(messenger.Event) bool { return true }}
	b.RegisterCommand(l)

	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e1", "/music despacito")))

	reply := commandtest.Event("6", "e2", "1")
	reply.RepliedToMessageID = "m1"
	require.NoError(t, b.Dispatch(context.Background(), reply))

	assert.Len(t, sent.Texts(), 1)
	assert.Equal(t, []string{"1"}, l.seen)
}

func TestListenersRunInOrderUntilOneTakes(t *testing.T) {
	b, _ := newBot(t)
	first := &listenerFunc{name: "first", listen: func(ev messenger.Event) bool { return ev.Body == "mano" }}
	second := &listenerFunc{name: "second", listen: func(messenger.Event) bool { return true }}
	b.RegisterCommand(first)
	b.RegisterCommand(second)

	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e1", "mano")))
	require.NoError(t, b.Dispatch(context.Background(), commandtest.Event("5", "e2", "hello")))

	assert.Equal(t, []string{"mano", "hello"}, first.seen)
	assert.Equal(t, []string{"hello"}, second.seen)
}

func TestStartRecoversPanicsAndStopsOnClosedStream(t *testing.T) {
	b, f := newBot(t)
	b.RegisterCommand(&listenerFunc{name: "boom", listen: func(messenger.Event) bool { panic("boom") }})

	events := make(chan messenger.Event, 1)
	events <- commandtest.Event("5", "e1", "hello")
	close(events)
	f.Client.EXPECT().Events(mock.Anything).Return((<-chan messenger.Event)(events), nil)

	done := make(chan error, 1)
	go func() { done <- b.Start(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
	}
	assert.True(t, f.Logger.HasEntryContaining("error", "recovered from panic: boom"))
}

func TestStartStopsOnContextCancel(t *testing.T) {
	b, f := newBot(t)
	events := make(chan messenger.Event)
	f.Client.EXPECT().Events(mock.Anything).Return((<-chan messenger.Event)(events), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
	}
}
