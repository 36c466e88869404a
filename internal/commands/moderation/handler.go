// Package moderation removes the member whose message was replied to.
package moderation

import (
	"context"
	"strconv"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
	"github.com/muratoffalex/manobot/internal/identity"
	"github.com/muratoffalex/manobot/internal/logger"
)

const (
	KickCommandName = "kick"
	BanCommandName  = "ban"
)

type Command struct {
	*base.Command
	name       string
	ban        bool
	identities *identity.Resolver
}

func NewKick(di *di.Container) *Command {
	return newCommand(di, KickCommandName, false)
}

func NewBan(di *di.Container) *Command {
	return newCommand(di, BanCommandName, true)
}

func newCommand(di *di.Container, name string, ban bool) *Command {
	cmd := &Command{
		name:       name,
		ban:        ban,
		identities: di.Identities,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Aliases() []string {
	if c.ban {
		return []string{"block"}
	}
	return []string{"remove"}
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	ev := req.Event
	if !c.IsAdmin(ev.SenderID) {
		caller := c.identities.Resolve(ctx, ev.SenderID)
		_, err := c.Reply(ctx, ev, c.L("goibot.adminOnly", map[string]any{"Name": caller.Name}))
		return err
	}

	target := targetID(req)
	switch {
	case target == "":
		caller := c.identities.Resolve(ctx, ev.SenderID)
		_, err := c.Reply(ctx, ev, c.L("moderation.noTarget", map[string]any{"Name": caller.Name}))
		return err
	case target == c.Client.SelfID():
		_, err := c.Reply(ctx, ev, c.L("moderation.self", nil))
		return err
	case c.identities.IsOwner(target):
		_, err := c.Reply(ctx, ev, c.L("moderation.owner", nil))
		return err
	}

	log := c.Logger.WithFields(logger.Fields{
		"thread_id": ev.ThreadID,
		"target_id": target,
		"by":        ev.SenderID,
	})

	name := c.identities.Resolve(ctx, target).Name
	if err := c.Client.RemoveMember(ctx, ev.ThreadID, target, c.ban); err != nil {
		log.WithError(err).Warn("Failed to remove member")
		_, sendErr := c.Reply(ctx, ev, c.L("moderation.failed", nil))
		return sendErr
	}
	log.Info("Member removed")

	key := "moderation.kicked"
	if c.ban {
		key = "moderation.banned"
	}
	_, err := c.Reply(ctx, ev, c.L(key, map[string]any{"Target": name}))
	return err
}

// targetID is the author of the replied-to message, or a numeric user ID
// given as the first argument.
func targetID(req commands.Request) string {
	if id := req.Event.RepliedToSenderID; id != "" {
		return id
	}
	if len(req.Args) > 0 {
		if _, err := strconv.ParseInt(req.Args[0], 10, 64); err == nil {
			return req.Args[0]
		}
	}
	return ""
}
