package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/muratoffalex/manobot/internal/logger"
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// YTDLPSearcher runs "ytsearchN:query" through yt-dlp with a flat playlist,
// so only metadata is fetched.
type YTDLPSearcher struct {
	proxy       string
	logger      logger.Logger
	installOnce sync.Once
	installErr  error
}

func NewYTDLPSearcher(proxy string, log logger.Logger) *YTDLPSearcher {
	return &YTDLPSearcher{proxy: proxy, logger: log}
}

func (s *YTDLPSearcher) install(ctx context.Context) error {
	s.installOnce.Do(func() {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			s.installErr = fmt.Errorf("install yt-dlp: %w", err)
		}
	})
	return s.installErr
}

func (s *YTDLPSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := s.install(ctx); err != nil {
		return nil, err
	}

	dl := ytdlp.New().
		SkipDownload().
		FlatPlaylist().
		PrintJSON()
	if s.proxy != "" {
		dl.Proxy(s.proxy)
	}

	s.logger.WithFields(logger.Fields{
		"query": query,
		"limit": limit,
	}).Debug("Searching YouTube")

	output, err := dl.Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, fmt.Errorf("failed to search youtube: %w", err)
	}

	entries, err := output.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to extract search results: %w", err)
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		result := Result{
			ID:  entry.ID,
			URL: "https://www.youtube.com/watch?v=" + entry.ID,
		}
		if entry.Title != nil {
			result.Title = *entry.Title
		}
		if entry.Uploader != nil {
			result.Author = *entry.Uploader
		}
		if entry.Duration != nil {
			result.Duration = time.Duration(*entry.Duration * float64(time.Second))
		}
		if entry.ViewCount != nil {
			result.Views = *entry.ViewCount
		}
		result.ThumbnailURL = thumbnailURL(entry)
		results = append(results, result)
		if len(results) == limit {
			break
		}
	}

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// thumbnailURL prefers the entry's main thumbnail, then the last (largest)
// listed one, then the static image every video has.
func thumbnailURL(entry *ytdlp.ExtractedInfo) string {
	if entry.Thumbnail != nil && *entry.Thumbnail != "" {
		return *entry.Thumbnail
	}
	for i := len(entry.Thumbnails) - 1; i >= 0; i-- {
		if t := entry.Thumbnails[i]; t != nil && t.URL != "" {
			return t.URL
		}
	}
	return "https://i.ytimg.com/vi/" + entry.ID + "/hqdefault.jpg"
}
