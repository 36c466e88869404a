package chat

import (
	"context"
	"errors"

	"github.com/muratoffalex/manobot/internal/ai"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/identity"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/persona"
	"github.com/muratoffalex/manobot/internal/store"
)

// Assistant is the wake-word persona. Histories are keyed by user ID.
type Assistant struct {
	completer Completer
	histories store.HistoryStore
	personas  *persona.Selector
	localizer Localizer
	cfg       config.ChatConfig
	logger    logger.Logger
}

func NewAssistant(
	completer Completer,
	histories store.HistoryStore,
	personas *persona.Selector,
	localizer Localizer,
	cfg config.ChatConfig,
	log logger.Logger,
) *Assistant {
	return &Assistant{
		completer: completer,
		histories: histories,
		personas:  personas,
		localizer: localizer,
		cfg:       cfg,
		logger:    log,
	}
}

// Reply asks the model and records the exchange. A failed completion returns
// a fixed apology and leaves the history untouched.
func (a *Assistant) Reply(ctx context.Context, id identity.Identity, message string) string {
	data := map[string]any{"Name": id.Name}
	if !a.completer.Configured() {
		return a.localizer.Localize("chat.notConfigured", data)
	}

	history := lastTurns(a.histories.Get(id.UserID), a.cfg.ContextTurns)
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: a.personas.SystemPrompt(id)})
	messages = append(messages, toMessages(history)...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: a.personas.UserPrompt(id, message)})

	resp, err := a.completer.Complete(ctx, ai.CompletionRequest{
		Messages:    messages,
		Temperature: a.cfg.Temperature,
		TopP:        a.cfg.TopP,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		a.logger.WithError(err).WithFields(logger.Fields{
			"user_id": id.UserID,
		}).Error("AI completion failed")
		if errors.Is(err, ai.ErrEmptyResponse) {
			return a.localizer.Localize("chat.emptyReply", data)
		}
		return a.localizer.Localize("chat.busy", data)
	}

	reply := ai.RewriteAddressTerms(resp.Content)
	_, err = a.histories.Append(ctx, id.UserID, a.cfg.HistoryLimit,
		store.Turn{Role: store.RoleUser, Content: persona.HistoryEntry(id, message)},
		store.Turn{Role: store.RoleAssistant, Content: reply},
	)
	if err != nil {
		a.logger.WithError(err).WithField("user_id", id.UserID).Warn("Failed to save chat history")
	}
	return reply
}
