// Package youtube holds the video and music commands. Both search YouTube,
// wait for a numbered reply and deliver the chosen entry; a YouTube link
// skips the search.
package youtube

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/commands/base"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/media"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
)

const (
	VideoCommandName = "video"
	MusicCommandName = "music"
)

var youtubeRegex = regexp.MustCompile(`^(https?:\/\/)?(www\.|m\.|music\.)?(youtube\.com|youtu\.be)\/.+$`)

type Command struct {
	*base.Command
	name    string
	aliases []string
	profile media.Profile
	media   *media.Service
}

func NewVideo(di *di.Container) *Command {
	return newCommand(di, VideoCommandName, []string{"videov2", "youtube", "yt"}, media.VideoProfile(di.Cfg.Media().Video))
}

func NewMusic(di *di.Container) *Command {
	return newCommand(di, MusicCommandName, []string{"song", "audio"}, media.AudioProfile(di.Cfg.Media().Audio))
}

func newCommand(di *di.Container, name string, aliases []string, profile media.Profile) *Command {
	cmd := &Command{
		name:    name,
		aliases: aliases,
		profile: profile,
		media:   di.Media,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Aliases() []string {
	return c.aliases
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	query := strings.TrimSpace(strings.Join(req.Args, " "))

	if youtubeRegex.MatchString(query) {
		link, err := cleanURL(query)
		if err == nil {
			c.Logger.WithFields(logger.Fields{
				"url":     link,
				"user_id": req.Event.SenderID,
			}).Info("Delivering linked media")
			return c.media.Deliver(ctx, req.Event, media.Result{URL: link, Title: link}, c.profile)
		}
		c.Logger.WithError(err).Debug("Unparsable link, searching instead")
	}

	return c.media.Search(ctx, req.Event, c.name, query, c.profile)
}

// HandleReply takes the number picked from a result list.
func (c *Command) HandleReply(ctx context.Context, ev messenger.Event, key string, entry pending.Entry) error {
	return c.Queue.Run(ctx, c.name, func(ctx context.Context) error {
		return c.media.Select(ctx, ev, key, entry)
	})
}

// cleanURL drops tracking parameters and the fragment.
func cleanURL(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.RawQuery != "" {
		query := u.Query()
		query.Del("si")      // YouTube session ID
		query.Del("pp")      // Paid promotion
		query.Del("feature") // source
		query.Del("clid")
		query.Del("rid")
		query.Del("referrer_clid")
		u.RawQuery = query.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}
