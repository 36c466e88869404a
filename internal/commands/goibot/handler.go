// Package goibot is the wake-word persona: it routes free text to commands
// and falls back to AI chat.
package goibot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/chat"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
	"github.com/muratoffalex/manobot/internal/identity"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
	"github.com/muratoffalex/manobot/internal/persona"
	"github.com/muratoffalex/manobot/internal/queue"
	"github.com/muratoffalex/manobot/internal/router"
)

const CommandName = "goibot"

// Conversation is stored with every tracked goibot message.
type Conversation struct {
	Identity identity.Identity
}

type Command struct {
	*base.Command
	router     *router.Router
	registry   *commands.Registry
	replies    *pending.Correlator
	identities *identity.Resolver
	personas   *persona.Selector
	assistant  *chat.Assistant
	replyTTL   time.Duration
}

func New(di *di.Container) *Command {
	cmd := &Command{
		router:     di.Router,
		registry:   di.Commands,
		replies:    di.Replies,
		identities: di.Identities,
		personas:   di.Personas,
		assistant:  di.Assistant,
		replyTTL:   di.Cfg.Chat().ReplyTTL,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"mano"}
}

// Listen takes every message that starts with a wake word.
func (c *Command) Listen(ctx context.Context, ev messenger.Event) (bool, error) {
	rest, ok := c.router.StripWake(ev.Body)
	if !ok {
		return false, nil
	}
	return true, c.Handle(ctx, commands.Request{Event: ev, Args: strings.Fields(rest)})
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	id := c.identities.Resolve(ctx, req.Event.SenderID)
	message := strings.Join(req.Args, " ")
	if message == "" {
		return c.filler(ctx, req.Event, id)
	}
	return c.converse(ctx, req.Event, id, message)
}

// HandleReply continues from a tracked message. The stored identity is only
// reused when the original author replies.
func (c *Command) HandleReply(ctx context.Context, ev messenger.Event, _ string, entry pending.Entry) error {
	message := strings.TrimSpace(ev.Body)
	if message == "" {
		return nil
	}

	err := c.Queue.Submit(ctx, CommandName, ev.SenderID, func(ctx context.Context) error {
		var id identity.Identity
		if conv, ok := entry.Data.(Conversation); ok && conv.Identity.UserID == ev.SenderID {
			id = conv.Identity
		} else {
			id = c.identities.Resolve(ctx, ev.SenderID)
		}
		return c.converse(ctx, ev, id, message)
	})
	if errors.Is(err, queue.ErrCooldown) {
		return nil
	}
	return err
}

func (c *Command) filler(ctx context.Context, ev messenger.Event, id identity.Identity) error {
	sentID, err := c.Reply(ctx, ev, c.personas.Filler(id))
	if err != nil {
		return err
	}
	c.track(ev, sentID, id)
	return nil
}

func (c *Command) converse(ctx context.Context, ev messenger.Event, id identity.Identity, message string) error {
	log := c.Logger.WithFields(logger.Fields{
		"user_id":   ev.SenderID,
		"thread_id": ev.ThreadID,
	})

	if result, ok := c.router.Route(message, c.IsAdmin(ev.SenderID)); ok {
		if result.Refused {
			log.WithField("routed", result.Command).Info("Refused privileged command")
			_, err := c.Reply(ctx, ev, c.L("goibot.adminOnly", map[string]any{"Name": id.Name}))
			return err
		}
		if c.runRouted(ctx, ev, result, log) {
			return nil
		}
	}

	c.React(ctx, ev, messenger.ReactionPending)
	answer := c.assistant.Reply(ctx, id, message)
	c.React(ctx, ev, messenger.ReactionDone)

	sentID, err := c.Reply(ctx, ev, answer)
	if err != nil {
		return err
	}
	c.track(ev, sentID, id)
	return nil
}

// runRouted reports whether the routed command ran. Missing commands and
// command errors fall through to chat.
func (c *Command) runRouted(ctx context.Context, ev messenger.Event, result router.Result, log logger.Logger) bool {
	cmd, ok := c.registry.Get(result.Command)
	if !ok || cmd.Name() == CommandName {
		return false
	}

	log = log.WithFields(logger.Fields{
		"routed": result.Command,
		"args":   result.Args,
	})
	log.Info("Running routed command")

	if err := cmd.Handle(ctx, commands.Request{Event: ev, Args: result.Args, Routed: true}); err != nil {
		log.WithError(err).Warn("Routed command failed, falling back to chat")
		return false
	}
	return true
}

func (c *Command) track(ev messenger.Event, sentID string, id identity.Identity) {
	if sentID == "" {
		return
	}
	c.replies.Register(pending.Key(ev.ThreadID, sentID), pending.Entry{
		Command:  CommandName,
		AuthorID: ev.SenderID,
		Data:     Conversation{Identity: id},
	}, c.replyTTL)
}
