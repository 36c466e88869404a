package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/commandtest"
)

func replyTo(senderID, targetID string) commands.Request {
	ev := commandtest.Event(senderID, "e1", "/kick")
	ev.RepliedToMessageID = "t1"
	ev.RepliedToSenderID = targetID
	return commands.Request{Event: ev}
}

func TestKickRemovesRepliedMember(t *testing.T) {
	f := commandtest.New(t, nil)
	sent := f.RecordSends()
	f.KnownUser("7", "Hamza")
	f.Client.EXPECT().SelfID().Return("99")
	f.Client.EXPECT().RemoveMember(mock.Anything, commandtest.ThreadID, "7", false).Return(nil).Once()

	require.NoError(t, NewKick(f.Container).Execute(context.Background(), replyTo(commandtest.AdminID, "7")))

	assert.Equal(t, []string{"Hamza ko group se nikal diya 👋"}, sent.Texts())
}

func TestBanByNumericArgument(t *testing.T) {
	f := commandtest.New(t, nil)
	sent := f.RecordSends()
	f.KnownUser("7", "Hamza")
	f.Client.EXPECT().SelfID().Return("99")
	f.Client.EXPECT().RemoveMember(mock.Anything, commandtest.ThreadID, "7", true).Return(nil).Once()

	req := commands.Request{Event: commandtest.Event(commandtest.OwnerID, "e1", "/ban 7"), Args: []string{"7"}}
	require.NoError(t, NewBan(f.Container).Execute(context.Background(), req))

	assert.Equal(t, []string{"Hamza ko ban kar diya 🚫"}, sent.Texts())
}

func TestModerationGuards(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		target string
		want   string
	}{
		{name: "regular user", caller: "5", target: "7", want: "Yeh sirf admin kar sakta hai Sara 😅"},
		{name: "no target", caller: commandtest.AdminID, target: "", want: "Kisko? Uske message pe reply karke likho Bilal 😅"},
		{name: "bot itself", caller: commandtest.AdminID, target: "99", want: "Main khud ko kaise nikalun 😂"},
		{name: "owner", caller: commandtest.AdminID, target: commandtest.OwnerID, want: "Owner ko koi nahi nikal sakta 😎"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := commandtest.New(t, nil)
			sent := f.RecordSends()
			f.KnownUser("5", "Sara")
			f.KnownUser(commandtest.AdminID, "Bilal")
			f.Client.EXPECT().SelfID().Return("99").Maybe()

			require.NoError(t, NewKick(f.Container).Execute(context.Background(), replyTo(tt.caller, tt.target)))

			assert.Equal(t, []string{tt.want}, sent.Texts())
			f.Client.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestKickFailureIsReported(t *testing.T) {
	f := commandtest.New(t, nil)
	sent := f.RecordSends()
	f.KnownUser("7", "Hamza")
	f.Client.EXPECT().SelfID().Return("99")
	f.Client.EXPECT().RemoveMember(mock.Anything, commandtest.ThreadID, "7", false).Return(errors.New("not enough rights"))

	require.NoError(t, NewKick(f.Container).Execute(context.Background(), replyTo(commandtest.AdminID, "7")))

	assert.Equal(t, []string{"Nahi ho paaya 😔 Shayad mujhe admin banana padega."}, sent.Texts())
	assert.True(t, f.Logger.HasEntryContaining("warn", "Failed to remove member"))
}
