package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/commands/commandtest"
	"github.com/muratoffalex/manobot/internal/messenger"
)

func commandNames(a *Application) []string {
	var names []string
	for _, cmd := range a.di.Commands.All() {
		names = append(names, cmd.Name())
	}
	return names
}

func TestRegistersEnabledCommands(t *testing.T) {
	f := commandtest.New(t, nil)
	a := NewWithContainer(f.Container)

	assert.Equal(t,
		[]string{"assistant", "ban", "goibot", "help", "kick", "music", "restart", "video"},
		commandNames(a))
}

func TestSkipsDisabledCommands(t *testing.T) {
	f := commandtest.New(t, map[string]any{
		"commands.video.enabled": false,
		"assistant.enabled":      false,
	})
	a := NewWithContainer(f.Container)

	names := commandNames(a)
	assert.NotContains(t, names, "video")
	assert.NotContains(t, names, "assistant")
	assert.Contains(t, names, "music")
}

func TestRestartCommandStopsRunWithRestartCode(t *testing.T) {
	f := commandtest.New(t, nil)
	sent := f.RecordSends()
	a := NewWithContainer(f.Container)

	events := make(chan messenger.Event, 1)
	events <- commandtest.Event(commandtest.OwnerID, "e1", "/restart")
	f.Client.EXPECT().Events(mock.Anything).Return((<-chan messenger.Event)(events), nil)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, RestartExitCode, a.ExitCode())
	assert.Len(t, sent.Texts(), 1)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := commandtest.New(t, nil)
	a := NewWithContainer(f.Container)
	f.Client.EXPECT().Events(mock.Anything).Return((<-chan messenger.Event)(make(chan messenger.Event)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.AfterFunc(50*time.Millisecond, cancel)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, a.ExitCode())
}

func TestRunStopsWhenEventStreamCloses(t *testing.T) {
	f := commandtest.New(t, nil)
	a := NewWithContainer(f.Container)

	events := make(chan messenger.Event)
	close(events)
	f.Client.EXPECT().Events(mock.Anything).Return((<-chan messenger.Event)(events), nil)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the event stream closed")
	}
	assert.Zero(t, a.ExitCode())
}
