package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
)

type Localizer interface {
	Localize(messageID string, data map[string]any) string
}

type Scheduler interface {
	After(name string, delay time.Duration, job func()) error
}

// Selection is kept in the pending reply of a result list.
type Selection struct {
	Results       []Result
	ListMessageID string
	Profile       Profile
}

type Service struct {
	searcher   Searcher
	resolver   Resolver
	prober     Prober
	downloader *Downloader
	sender     *Sender
	client     messenger.Client
	replies    *pending.Correlator
	scheduler  Scheduler
	localizer  Localizer
	cfg        config.MediaConfig
	maxSize    int64
	logger     logger.Logger
}

type ServiceDeps struct {
	Searcher   Searcher
	Resolver   Resolver
	Prober     Prober
	Downloader *Downloader
	Client     messenger.Client
	Replies    *pending.Correlator
	Scheduler  Scheduler
	Localizer  Localizer
	Logger     logger.Logger
}

func NewService(cfg config.MediaConfig, deps ServiceDeps) (*Service, error) {
	maxSize, err := cfg.MaxBytes()
	if err != nil {
		return nil, err
	}
	return &Service{
		searcher:   deps.Searcher,
		resolver:   deps.Resolver,
		prober:     deps.Prober,
		downloader: deps.Downloader,
		sender:     NewSender(deps.Client, cfg.SendAttempts, cfg.SendDelay, deps.Logger),
		client:     deps.Client,
		replies:    deps.Replies,
		scheduler:  deps.Scheduler,
		localizer:  deps.Localizer,
		cfg:        cfg,
		maxSize:    maxSize,
		logger:     deps.Logger,
	}, nil
}

func (s *Service) reply(ctx context.Context, ev messenger.Event, text string) (string, error) {
	return s.client.Send(ctx, messenger.Outgoing{
		ThreadID: ev.ThreadID,
		Text:     text,
		ReplyTo:  ev.MessageID,
	})
}

func (s *Service) unsend(ctx context.Context, threadID, messageID string) {
	if messageID == "" {
		return
	}
	if err := s.client.Unsend(ctx, threadID, messageID); err != nil {
		s.logger.WithError(err).WithField("message_id", messageID).Debug("Failed to unsend message")
	}
}

// Search sends the numbered result list and registers it for a reply from
// the requester.
func (s *Service) Search(ctx context.Context, ev messenger.Event, command, query string, profile Profile) error {
	query = strings.TrimSpace(query)
	if query == "" {
		_, err := s.reply(ctx, ev, s.localizer.Localize("media.emptyQuery", map[string]any{"Kind": profile.Name}))
		return err
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	results, err := s.searcher.Search(searchCtx, query, s.cfg.Results)
	cancel()
	if errors.Is(err, ErrNoResults) || (err == nil && len(results) == 0) {
		_, err := s.reply(ctx, ev, s.localizer.Localize("media.noResults", nil))
		return err
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logger.Fields{
			"command": command,
			"query":   query,
		}).Error("Search failed")
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize("media.error", nil))
		return sendErr
	}
	if len(results) > s.cfg.Results {
		results = results[:s.cfg.Results]
	}

	thumbnails := s.fetchThumbnails(ctx, results)
	defer s.scheduleCleanup("media-thumbnail-", s.cfg.ThumbnailCleanupDelay, thumbnails...)

	listID, err := s.client.Send(ctx, messenger.Outgoing{
		ThreadID: ev.ThreadID,
		Text:     ListText(results, s.localizer),
		ReplyTo:  ev.MessageID,
		Album:    thumbnails,
	})
	if err != nil {
		return fmt.Errorf("send result list: %w", err)
	}
	if listID == "" {
		return nil
	}

	s.replies.Register(pending.Key(ev.ThreadID, listID), pending.Entry{
		Command:       command,
		AuthorID:      ev.SenderID,
		RequireAuthor: true,
		Data: Selection{
			Results:       results,
			ListMessageID: listID,
			Profile:       profile,
		},
	}, s.cfg.SelectionTTL)
	return nil
}

// Select handles a reply to a result list. An invalid number is answered
// with a correction and leaves the list registered. A valid one claims the
// list, so concurrent replies deliver at most once.
func (s *Service) Select(ctx context.Context, ev messenger.Event, key string, entry pending.Entry) error {
	selection, ok := entry.Data.(Selection)
	if !ok {
		return fmt.Errorf("unexpected pending data %T", entry.Data)
	}

	index, err := ParseSelection(ev.Body, len(selection.Results))
	if err != nil {
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize("media.invalidSelection", map[string]any{
			"Count": len(selection.Results),
		}))
		return sendErr
	}

	if s.cfg.APIKey == "" {
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize("media.missingKey", nil))
		return sendErr
	}

	if _, ok := s.replies.Consume(key); !ok {
		s.logger.WithField("key", key).Debug("Selection already claimed")
		return nil
	}
	s.unsend(ctx, ev.ThreadID, selection.ListMessageID)
	return s.Deliver(ctx, ev, selection.Results[index-1], selection.Profile)
}

// Deliver resolves a quality tier, downloads and sends the file. Every
// failure is reported to the user; only send errors of status messages are
// returned.
func (s *Service) Deliver(ctx context.Context, ev messenger.Event, result Result, profile Profile) error {
	log := s.logger.WithFields(logger.Fields{
		"command":   profile.Name,
		"thread_id": ev.ThreadID,
		"user_id":   ev.SenderID,
		"source":    result.URL,
	})

	processingID, err := s.reply(ctx, ev, s.localizer.Localize("media.processing", map[string]any{"Title": result.Title}))
	if err != nil {
		return err
	}

	link, err := ResolveTiers(ctx, s.resolver, s.prober, result.URL, profile, s.maxSize, log)
	s.unsend(ctx, ev.ThreadID, processingID)
	if err != nil {
		log.WithError(err).Warn("No downloadable quality")
		key := "media.unavailable"
		if errors.Is(err, ErrNotConfigured) {
			key = "media.missingKey"
		}
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize(key, map[string]any{
			"Kind":  profile.Name,
			"Limit": humanize.IBytes(uint64(s.maxSize)),
		}))
		return sendErr
	}

	title := DisplayTitle(link.Title, result.Title)
	quality := link.Quality + profile.QualitySuffix
	downloadingID, err := s.reply(ctx, ev, s.localizer.Localize("media.downloading", map[string]any{
		"Title":   title,
		"Quality": quality,
	}))
	if err != nil {
		return err
	}

	path, err := s.downloader.Download(ctx, link, profile.Format)
	if err != nil {
		log.WithError(err).WithField("quality", quality).Error("Download failed")
		s.unsend(ctx, ev.ThreadID, downloadingID)
		key := "media.downloadFailed"
		switch {
		case errors.Is(err, ErrEmptyFile):
			key = "media.emptyFile"
		case errors.Is(err, ErrTooLarge):
			key = "media.unavailable"
		}
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize(key, map[string]any{
			"Kind":  profile.Name,
			"Limit": humanize.IBytes(uint64(s.maxSize)),
		}))
		return sendErr
	}
	defer s.scheduleCleanup("media-cleanup-", s.cfg.CleanupDelay, messenger.Attachment{Path: path})

	caption := Caption(s.localizer, result, title, quality, link.URL)
	err = s.sender.Send(ctx, ev.ThreadID, caption, messenger.Attachment{Path: path, Kind: profile.Kind})
	if err != nil {
		log.WithError(err).Error("Failed to deliver media")
		_, sendErr := s.reply(ctx, ev, s.localizer.Localize("media.sendFailed", map[string]any{"Kind": profile.Name}))
		return sendErr
	}

	s.unsend(ctx, ev.ThreadID, downloadingID)
	log.WithField("quality", quality).Info("Media delivered")
	return nil
}

// fetchThumbnails downloads the thumbnails of results in parallel. Failed
// ones are left out; the list is sent either way.
func (s *Service) fetchThumbnails(ctx context.Context, results []Result) []messenger.Attachment {
	if !s.cfg.Thumbnails || s.downloader == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	paths := make([]string, len(results))
	var g errgroup.Group
	for i, r := range results {
		if r.ThumbnailURL == "" {
			continue
		}
		g.Go(func() error {
			path, err := s.downloader.Download(ctx, Link{URL: r.ThumbnailURL, Filename: r.ID + ".jpg"}, "jpg")
			if err != nil {
				s.logger.WithError(err).WithField("result", r.ID).Debug("Thumbnail download failed")
				return nil
			}
			paths[i] = path
			return nil
		})
	}
	_ = g.Wait()

	var album []messenger.Attachment
	for _, path := range paths {
		if path != "" {
			album = append(album, messenger.Attachment{Path: path, Kind: messenger.AttachmentPhoto})
		}
	}
	return album
}

func (s *Service) scheduleCleanup(prefix string, delay time.Duration, files ...messenger.Attachment) {
	for _, f := range files {
		path := f.Path
		remove := func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.WithError(err).WithField("path", path).Warn("Failed to remove temp file")
			}
		}
		if err := s.scheduler.After(prefix+filepath.Base(path), delay, remove); err != nil {
			s.logger.WithError(err).Warn("Failed to schedule cleanup, removing now")
			remove()
		}
	}
}

// ParseSelection accepts a 1-based index within [1, count].
func ParseSelection(body string, count int) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil || index < 1 || index > count {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, body)
	}
	return index, nil
}

// DisplayTitle prefers the provider's title unless it is a placeholder.
func DisplayTitle(providerTitle, searchTitle string) string {
	switch strings.TrimSpace(providerTitle) {
	case "", "YouTube Video", "Unknown Title":
		return searchTitle
	default:
		return providerTitle
	}
}

func ListText(results []Result, l Localizer) string {
	var b strings.Builder
	b.WriteString(l.Localize("media.list.header", map[string]any{"Count": len(results)}))
	b.WriteString("\n\n")
	for i, r := range results {
		b.WriteString(l.Localize("media.list.item", map[string]any{
			"Index":    i + 1,
			"Title":    r.Title,
			"Duration": r.Timestamp(),
		}))
		b.WriteString("\n")
		b.WriteString(l.Localize("media.list.meta", map[string]any{
			"Author": r.Author,
			"Views":  FormatCount(r.Views),
		}))
		b.WriteString("\n\n")
	}
	b.WriteString(l.Localize("media.list.footer", nil))
	return b.String()
}

func Caption(l Localizer, result Result, title, quality, downloadURL string) string {
	lines := []string{l.Localize("media.caption.title", map[string]any{"Title": title})}
	if ts := result.Timestamp(); ts != "" {
		lines = append(lines, l.Localize("media.caption.duration", map[string]any{"Duration": ts}))
	}
	if result.Author != "" {
		lines = append(lines, l.Localize("media.caption.channel", map[string]any{"Channel": result.Author}))
	}
	if result.Views > 0 {
		lines = append(lines, l.Localize("media.caption.views", map[string]any{"Views": FormatCount(result.Views)}))
	}
	lines = append(lines,
		l.Localize("media.caption.quality", map[string]any{"Quality": quality}),
		l.Localize("media.caption.source", map[string]any{"URL": result.URL}),
		l.Localize("media.caption.link", map[string]any{"URL": downloadURL}),
	)
	return strings.Join(lines, "\n")
}
