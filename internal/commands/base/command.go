package base

import (
	"context"
	"errors"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/queue"
	"github.com/muratoffalex/manobot/internal/service"
)

type Command struct {
	command   commands.Command
	Client    messenger.Client
	Logger    logger.Logger
	Cfg       *config.Config
	Queue     *queue.Queue
	Localizer *service.Localizer
}

// NewCommand registers the command's limits with the queue. cmd.Name must
// already work on the zero value.
func NewCommand(cmd commands.Command, di *di.Container) *Command {
	cfg := di.Cfg.GetCommandConfig(cmd.Name())
	di.Queue.Configure(cmd.Name(), queue.Limits{
		Concurrency: cfg.Queue.Throttle.Concurrency,
		Cooldown:    cfg.Cooldown,
		Timeout:     cfg.Timeout,
	})
	return &Command{
		command:   cmd,
		Client:    di.Client,
		Logger:    di.Logger.WithField("command", cmd.Name()),
		Cfg:       di.Cfg,
		Queue:     di.Queue,
		Localizer: di.Localizer,
	}
}

func (c *Command) Name() string {
	return ""
}

func (c *Command) Aliases() []string {
	return []string{}
}

// Handle runs Execute through the queue. A user on cooldown is ignored
// silently.
func (c *Command) Handle(ctx context.Context, req commands.Request) error {
	err := c.Queue.Submit(ctx, c.command.Name(), req.Event.SenderID, func(ctx context.Context) error {
		return c.command.Execute(ctx, req)
	})
	if errors.Is(err, queue.ErrCooldown) {
		return nil
	}
	return err
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	return nil
}

func (c *Command) L(messageID string, data map[string]any) string {
	return c.Localizer.Localize(messageID, data)
}

// Reply answers ev in its thread and returns the sent message ID.
func (c *Command) Reply(ctx context.Context, ev messenger.Event, text string) (string, error) {
	id, err := c.Client.Send(ctx, messenger.Outgoing{
		ThreadID: ev.ThreadID,
		Text:     text,
		ReplyTo:  ev.MessageID,
	})
	if err != nil {
		c.Logger.WithError(err).WithField("thread_id", ev.ThreadID).Error("Failed to send message")
	}
	return id, err
}

// React sets a reaction and only logs failures.
func (c *Command) React(ctx context.Context, ev messenger.Event, emoji string) {
	if err := c.Client.React(ctx, ev.ThreadID, ev.MessageID, emoji); err != nil {
		c.Logger.WithError(err).Debug("Failed to set reaction")
	}
}

func (c *Command) IsAdmin(userID string) bool {
	return c.Cfg.Bot().IsAdmin(userID)
}
