package restart

import (
	"context"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
)

const CommandName = "restart"

type Command struct {
	*base.Command
	restart func()
}

// New takes the function that stops the bot with the restart exit code.
func New(di *di.Container, restart func()) *Command {
	cmd := &Command{restart: restart}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"reboot"}
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	ev := req.Event
	if !c.IsAdmin(ev.SenderID) {
		c.Logger.WithField("user_id", ev.SenderID).Warn("Restart refused")
		_, err := c.Reply(ctx, ev, c.L("goibot.adminOnly", map[string]any{"Name": ev.SenderName}))
		return err
	}

	if _, err := c.Reply(ctx, ev, c.L("restart.notice", nil)); err != nil {
		c.Logger.WithError(err).Warn("Restarting without notice")
	}
	c.Logger.WithField("user_id", ev.SenderID).Info("Restart requested")
	c.restart()
	return nil
}
