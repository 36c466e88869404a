package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
)

// Bot reads events from the platform and hands each one to the first
// interested handler: the owner of a tracked reply, a prefixed command, then
// the listeners in registration order.
type Bot struct {
	client    messenger.Client
	registry  *commands.Registry
	replies   *pending.Correlator
	prefix    string
	logger    logger.Logger
	listeners []commands.Listener
	wg        sync.WaitGroup
}

func NewBot(
	client messenger.Client,
	registry *commands.Registry,
	replies *pending.Correlator,
	prefix string,
	logger logger.Logger,
) *Bot {
	return &Bot{
		client:   client,
		registry: registry,
		replies:  replies,
		prefix:   prefix,
		logger:   logger,
	}
}

// Start blocks until ctx is done or the event stream closes. In-flight
// handlers are waited for before it returns.
func (b *Bot) Start(ctx context.Context) error {
	events, err := b.client.Events(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to events: %w", err)
	}
	defer b.wg.Wait()

	b.logger.Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				b.logger.Info("Event stream closed")
				return nil
			}
			b.wg.Add(1)
			go func(ev messenger.Event) {
				defer b.wg.Done()
				b.handle(ctx, ev)
			}(ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, ev messenger.Event) {
	log := b.logger.WithFields(logger.Fields{
		"event_id":   uuid.NewString(),
		"thread_id":  ev.ThreadID,
		"user_id":    ev.SenderID,
		"message_id": ev.MessageID,
	})
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("recovered from panic: %v", r))
		}
	}()

	log.Trace("Received event")
	if err := b.Dispatch(ctx, ev); err != nil {
		log.WithError(err).Error("Failed to handle event")
	}
}

func (b *Bot) RegisterCommand(cmd commands.Command) {
	if cmd == nil {
		b.logger.Error("Attempting to register nil command")
		return
	}

	name := cmd.Name()
	if name == "" {
		b.logger.Error("Attempting to register command with empty name")
		return
	}

	b.logger.WithFields(logger.Fields{
		"command": name,
	}).Debug("Registering command")

	b.registry.Register(cmd)
	if l, ok := cmd.(commands.Listener); ok {
		b.listeners = append(b.listeners, l)
	}
}

// Dispatch routes one event synchronously.
func (b *Bot) Dispatch(ctx context.Context, ev messenger.Event) error {
	if ev.IsReply() {
		if handled, err := b.dispatchReply(ctx, ev); handled {
			return err
		}
	}

	if name, args, ok := b.parseCommand(ev.Body); ok {
		cmd, found := b.registry.Get(name)
		if !found {
			b.logger.WithField("command", name).Debug("Unknown command")
			return nil
		}
		b.logger.WithFields(logger.Fields{
			"command": cmd.Name(),
			"user_id": ev.SenderID,
			"args":    args,
		}).Info("Handling command")
		return cmd.Handle(ctx, commands.Request{Event: ev, Args: args})
	}

	for _, l := range b.listeners {
		took, err := l.Listen(ctx, ev)
		if took {
			return err
		}
	}
	return nil
}

// dispatchReply hands a reply to the command that tracks the replied-to
// message. Replies from anyone but a required author are not handled here.
func (b *Bot) dispatchReply(ctx context.Context, ev messenger.Event) (bool, error) {
	key := pending.Key(ev.ThreadID, ev.RepliedToMessageID)
	entry, ok := b.replies.Resolve(key)
	if !ok {
		return false, nil
	}

	log := b.logger.WithFields(logger.Fields{
		"command": entry.Command,
		"user_id": ev.SenderID,
		"key":     key,
	})
	if !entry.AcceptsFrom(ev.SenderID) {
		log.Debug("Reply from someone else, ignoring")
		return false, nil
	}

	cmd, found := b.registry.Get(entry.Command)
	if !found {
		log.Warn("Tracked reply for unregistered command")
		return false, nil
	}
	handler, ok := cmd.(commands.ReplyHandler)
	if !ok {
		log.Warn("Command does not handle replies")
		return false, nil
	}

	log.Info("Handling tracked reply")
	return true, handler.HandleReply(ctx, ev, key, entry)
}

// parseCommand splits "/name@bot arg1 arg2" into name and arguments.
func (b *Bot) parseCommand(body string) (string, []string, bool) {
	if b.prefix == "" || !strings.HasPrefix(body, b.prefix) {
		return "", nil, false
	}
	parts := strings.Fields(strings.TrimPrefix(body, b.prefix))
	if len(parts) == 0 {
		return "", nil, false
	}
	name, _, _ := strings.Cut(parts[0], "@")
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), parts[1:], true
}
