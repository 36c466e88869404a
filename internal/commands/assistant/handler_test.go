package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/commands/commandtest"
	"github.com/muratoffalex/manobot/internal/messenger"
)

func recordReactions(f *commandtest.Fixture) *[]string {
	var reactions []string
	f.Client.EXPECT().React(mock.Anything, commandtest.ThreadID, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _, _, emoji string) error {
			reactions = append(reactions, emoji)
			return nil
		}).Maybe()
	return &reactions
}

func TestTriggered(t *testing.T) {
	f := commandtest.New(t, nil)
	cmd := New(f.Container)

	assert.True(t, cmd.Triggered(commandtest.Event("5", "e1", "AK tum kahan ho")))
	assert.True(t, cmd.Triggered(commandtest.Event("5", "e1", "bakwas mat karo")))
	assert.False(t, cmd.Triggered(commandtest.Event("5", "e1", "hello")))

	reply := commandtest.Event("5", "e1", "hello")
	reply.IsReplyToBot = true
	assert.True(t, cmd.Triggered(reply))
}

func TestListenSendsTwoLineReply(t *testing.T) {
	f := commandtest.New(t, nil)
	cmd := New(f.Container)
	reactions := recordReactions(f)
	sent := f.RecordSends()
	f.Provider.Answers = []string{"Haan main yahin hoon\n\nbolo kya chahiye\nteesri line"}

	took, err := cmd.Listen(context.Background(), commandtest.Event("5", "e1", "ak suno"))
	require.NoError(t, err)
	assert.True(t, took)

	assert.Equal(t, []string{"Haan main yahin hoon\nbolo kya chahiye"}, sent.Texts())
	assert.Equal(t, []string{messenger.ReactionWaiting, messenger.ReactionDone}, *reactions)

	require.Equal(t, 1, f.Provider.Calls())
	req := f.Provider.Requests[0]
	assert.Equal(t, "companion", req.Model)
	assert.EqualValues(t, 120, req.MaxTokens)
}

func TestListenReportsBusyWhenChainFails(t *testing.T) {
	f := commandtest.New(t, nil)
	cmd := New(f.Container)
	reactions := recordReactions(f)
	sent := f.RecordSends()
	f.Provider.Err = errors.New("upstream down")

	took, err := cmd.Listen(context.Background(), commandtest.Event("5", "e1", "ak suno"))
	require.NoError(t, err)
	assert.True(t, took)

	assert.Equal(t, []string{"Abhi thoda busy ho gaya hoon 😔\nThodi der baad phir try karna ❤️"}, sent.Texts())
	assert.Equal(t, []string{messenger.ReactionWaiting, messenger.ReactionFailed}, *reactions)
}

func TestListenSkipsUntriggeredAndDisabled(t *testing.T) {
	f := commandtest.New(t, nil)
	cmd := New(f.Container)

	took, err := cmd.Listen(context.Background(), commandtest.Event("5", "e1", "good morning"))
	require.NoError(t, err)
	assert.False(t, took)

	disabled := commandtest.New(t, map[string]any{"assistant.enabled": false})
	cmd = New(disabled.Container)
	took, err = cmd.Listen(context.Background(), commandtest.Event("5", "e1", "ak suno"))
	require.NoError(t, err)
	assert.False(t, took)
}

func TestCooldownDropsSecondMessage(t *testing.T) {
	f := commandtest.New(t, nil)
	cmd := New(f.Container)
	recordReactions(f)
	sent := f.RecordSends()
	f.Provider.Answers = []string{"ek\ndo"}

	for range 2 {
		_, err := cmd.Listen(context.Background(), commandtest.Event("5", "e1", "ak suno"))
		require.NoError(t, err)
	}

	assert.Len(t, sent.Texts(), 1)
	assert.Equal(t, 1, f.Provider.Calls())
}
