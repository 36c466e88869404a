package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/muratoffalex/manobot/internal/ai"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/store"
)

// ErrUnavailable is returned when no model in the chain answered.
var ErrUnavailable = errors.New("companion unavailable")

// Companion is the short two-line persona. It keeps its own bounded history
// per user and never persists it.
type Companion struct {
	completer Completer
	histories store.HistoryStore
	localizer Localizer
	cfg       config.AssistantConfig
	logger    logger.Logger
}

func NewCompanion(completer Completer, localizer Localizer, cfg config.AssistantConfig, log logger.Logger) *Companion {
	return &Companion{
		completer: completer,
		histories: store.NewHistories(store.MemoryBackend{}),
		localizer: localizer,
		cfg:       cfg,
		logger:    log,
	}
}

// Reply returns exactly two lines, or ErrUnavailable when the whole chain
// failed so the caller can mark the message as failed.
func (c *Companion) Reply(ctx context.Context, userID, message string) (string, error) {
	history, err := c.histories.Append(ctx, userID, c.cfg.HistoryLimit,
		store.Turn{Role: store.RoleUser, Content: message})
	if err != nil {
		return "", err
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: c.cfg.SystemPrompt})
	messages = append(messages, toMessages(history)...)

	var text string
	resp, err := c.completer.Complete(ctx, ai.CompletionRequest{
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	switch {
	case err == nil:
		text = resp.Content
	case errors.Is(err, ai.ErrEmptyResponse):
		text = c.localizer.Localize("companion.emptyReply", nil)
	default:
		c.logger.WithError(err).WithField("user_id", userID).Warn("Companion chain exhausted")
		return "", ErrUnavailable
	}

	reply := TwoLines(text, c.localizer.Localize("companion.padding", nil))
	if _, err := c.histories.Append(ctx, userID, c.cfg.HistoryLimit,
		store.Turn{Role: store.RoleAssistant, Content: reply}); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Debug("Failed to keep companion reply")
	}
	return reply, nil
}

// TwoLines keeps the first two non-blank lines of text and pads with padding
// when there is only one.
func TwoLines(text, padding string) string {
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	for len(lines) < 2 {
		lines = append(lines, padding)
	}
	return strings.Join(lines[:2], "\n")
}
