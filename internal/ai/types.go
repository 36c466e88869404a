package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Provider types accepted in ai.providers[].type.
const (
	ProviderOpenai     = "openai-compatible"
	ProviderOpenrouter = "openrouter"
	ProviderGemini     = "gemini"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type CompletionResponse struct {
	Provider     string
	Model        string
	Content      string
	FinishReason string
}

// Provider sends a single non-streaming chat completion to one backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)
}

type ErrorKind string

const (
	KindNetwork       ErrorKind = "network"
	KindRateLimit     ErrorKind = "rate_limit"
	KindServer        ErrorKind = "server"
	KindClient        ErrorKind = "client"
	KindContentPolicy ErrorKind = "content_policy"
	KindUnknown       ErrorKind = "unknown"
)

// ProviderError is a failed completion with whatever the backend told us
// about it. StatusCode is zero when no HTTP response arrived.
type ProviderError struct {
	Err        error
	Provider   string
	Model      string
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	var b strings.Builder
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "%d ", e.StatusCode)
	}
	if e.Provider != "" && e.Model != "" {
		fmt.Fprintf(&b, "[%s:%s] ", e.Provider, e.Model)
	}
	b.WriteString(msg)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code: %s)", e.Code)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Kind() ErrorKind {
	status := e.StatusCode
	switch {
	case status == 0 && isNetworkError(e.Err):
		return KindNetwork
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= http.StatusInternalServerError:
		return KindServer
	case (status == http.StatusBadRequest || status == http.StatusForbidden) &&
		strings.Contains(strings.ToLower(e.Message), "policy"):
		return KindContentPolicy
	case status >= http.StatusBadRequest:
		return KindClient
	}
	return KindUnknown
}

// IsRetryable is true for failures another attempt might not hit.
func (e *ProviderError) IsRetryable() bool {
	switch e.Kind() {
	case KindNetwork, KindRateLimit, KindServer:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func Retryable(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.IsRetryable()
}

// KindOf classifies err, or KindUnknown when it is not a ProviderError.
func KindOf(err error) ErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind()
	}
	return KindUnknown
}
