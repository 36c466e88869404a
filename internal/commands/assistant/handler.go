package assistant

import (
	"context"
	"strings"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/chat"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
	"github.com/muratoffalex/manobot/internal/messenger"
)

const CommandName = "assistant"

type Command struct {
	*base.Command
	companion *chat.Companion
	trigger   string
}

func New(di *di.Container) *Command {
	cmd := &Command{
		companion: di.Companion,
		trigger:   strings.ToLower(di.Cfg.Assistant().Trigger),
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"ak"}
}

// Triggered reports whether ev mentions the trigger anywhere or replies to
// the bot.
func (c *Command) Triggered(ev messenger.Event) bool {
	if ev.IsReplyToBot {
		return true
	}
	return c.trigger != "" && strings.Contains(strings.ToLower(ev.Body), c.trigger)
}

func (c *Command) Listen(ctx context.Context, ev messenger.Event) (bool, error) {
	if c.companion == nil || strings.TrimSpace(ev.Body) == "" || !c.Triggered(ev) {
		return false, nil
	}
	return true, c.Handle(ctx, commands.Request{Event: ev})
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	if c.companion == nil {
		return nil
	}
	ev := req.Event
	message := ev.Body
	if len(req.Args) > 0 {
		message = strings.Join(req.Args, " ")
	}

	c.React(ctx, ev, messenger.ReactionWaiting)

	reply, err := c.companion.Reply(ctx, ev.SenderID, message)
	if err != nil {
		c.Logger.WithError(err).WithField("user_id", ev.SenderID).Warn("Companion reply failed")
		_, sendErr := c.Reply(ctx, ev, c.L("companion.busy", nil))
		c.React(ctx, ev, messenger.ReactionFailed)
		return sendErr
	}

	if _, err := c.Reply(ctx, ev, reply); err != nil {
		return err
	}
	c.React(ctx, ev, messenger.ReactionDone)
	return nil
}
