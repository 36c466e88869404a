// Package media implements search, quality-tier resolution, download and
// delivery of YouTube videos and songs.
package media

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/messenger"
)

var (
	ErrNoResults        = errors.New("no results")
	ErrTooLarge         = errors.New("file exceeds size limit")
	ErrEmptyFile        = errors.New("downloaded file is empty")
	ErrUnavailable      = errors.New("no quality tier available")
	ErrNotConfigured    = errors.New("download provider API key is missing")
	ErrInvalidSelection = errors.New("invalid selection")
)

// Result is one search hit.
type Result struct {
	ID           string
	Title        string
	URL          string
	Author       string
	Duration     time.Duration
	Views        float64
	ThumbnailURL string
}

// Timestamp renders the duration as m:ss or h:mm:ss.
func (r Result) Timestamp() string {
	if r.Duration <= 0 {
		return ""
	}
	total := int(r.Duration.Round(time.Second).Seconds())
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Profile describes what the download provider is asked for.
type Profile struct {
	Name          string
	Format        string
	QualityField  string
	Qualities     []string
	QualitySuffix string
	Kind          messenger.AttachmentKind
}

func VideoProfile(cfg config.MediaProfile) Profile {
	return Profile{
		Name:          "video",
		Format:        cfg.Format,
		QualityField:  cfg.QualityField,
		Qualities:     cfg.Qualities,
		QualitySuffix: "p",
		Kind:          messenger.AttachmentVideo,
	}
}

func AudioProfile(cfg config.MediaProfile) Profile {
	return Profile{
		Name:          "music",
		Format:        cfg.Format,
		QualityField:  cfg.QualityField,
		Qualities:     cfg.Qualities,
		QualitySuffix: "kbps",
		Kind:          messenger.AttachmentAudio,
	}
}

// Link is a resolved direct download.
type Link struct {
	URL      string
	Title    string
	Filename string
	Quality  string
	Size     int64
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename replaces everything outside [a-zA-Z0-9.-]. An empty name
// becomes a random one with the given extension.
func SanitizeFilename(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = uuid.NewString() + "." + ext
	}
	return unsafeFilename.ReplaceAllString(name, "_")
}

// FormatCount renders 1234 as 1.2K and 5600000 as 5.6M.
func FormatCount(count float64) string {
	switch {
	case count < 1000:
		return fmt.Sprintf("%.0f", count)
	case count < 10000:
		return fmt.Sprintf("%.1fK", count/1000)
	case count < 1000000:
		return fmt.Sprintf("%.0fK", count/1000)
	case count < 10000000:
		return fmt.Sprintf("%.1fM", count/1000000)
	case count < 1000000000:
		return fmt.Sprintf("%.0fM", count/1000000)
	default:
		return fmt.Sprintf("%.1fB", count/1000000000)
	}
}
