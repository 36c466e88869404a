package help

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/commandtest"
	"github.com/muratoffalex/manobot/internal/commands/youtube"
)

func TestHelpListsRegisteredCommands(t *testing.T) {
	f := commandtest.New(t, nil)
	sent := f.RecordSends()

	cmd := New(f.Container)
	f.Container.Commands.Register(cmd)
	f.Container.Commands.Register(youtube.NewVideo(f.Container))

	require.NoError(t, cmd.Execute(context.Background(), commands.Request{Event: commandtest.Event("5", "e1", "/help")}))

	assert.Equal(t, []string{
		"📜 Mano commands:\n" +
			"/help - show this list\n" +
			"   aliases: start, menu\n" +
			"/video - search a video and download it\n" +
			"   aliases: videov2, youtube, yt\n" +
			"\n" +
			"Ya seedha likho: mano/bot <baat> 😊",
	}, sent.Texts())
}
