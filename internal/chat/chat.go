// Package chat turns a user message into a persona reply. Completion errors
// stop here: callers always get text they can send.
package chat

import (
	"context"

	"github.com/muratoffalex/manobot/internal/ai"
	"github.com/muratoffalex/manobot/internal/store"
)

type Completer interface {
	Complete(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error)
	Configured() bool
}

type Localizer interface {
	Localize(messageID string, data map[string]any) string
}

func toMessages(turns []store.Turn) []ai.Message {
	messages := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ai.Message{Role: string(t.Role), Content: t.Content})
	}
	return messages
}

func lastTurns(turns []store.Turn, n int) []store.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
