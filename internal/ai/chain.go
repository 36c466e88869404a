package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/muratoffalex/manobot/internal/logger"
)

var (
	ErrNotConfigured   = errors.New("no configured provider for any model in the chain")
	ErrAllModelsFailed = errors.New("all models failed")
	ErrEmptyResponse   = errors.New("empty response")
)

type Target struct {
	Provider string
	Model    string
}

func (t Target) String() string {
	return t.Provider + ":" + t.Model
}

// ParseModelSpec splits "provider:model". Only the first colon separates, so
// OpenRouter ids such as "google/gemma-7b-it:free" survive intact.
func ParseModelSpec(spec string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(spec, ":")
	if !ok || provider == "" || model == "" {
		return "", spec, ErrInvalidModelFormat
	}
	return provider, model, nil
}

func ParseTargets(specs []string) ([]Target, error) {
	targets := make([]Target, 0, len(specs))
	for _, spec := range specs {
		provider, model, err := ParseModelSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, spec)
		}
		targets = append(targets, Target{Provider: provider, Model: model})
	}
	return targets, nil
}

// Chain tries its targets in order until one answers. An empty answer ends
// the chain with ErrEmptyResponse so callers can reply with their default.
// Every attempt gets its own timeout.
type Chain struct {
	registry *ProviderRegistry
	targets  []Target
	timeout  time.Duration
	logger   logger.Logger
}

func NewChain(registry *ProviderRegistry, specs []string, timeout time.Duration, log logger.Logger) (*Chain, error) {
	targets, err := ParseTargets(specs)
	if err != nil {
		return nil, err
	}
	return &Chain{
		registry: registry,
		targets:  targets,
		timeout:  timeout,
		logger:   log,
	}, nil
}

func (c *Chain) Targets() []Target {
	return c.targets
}

// Configured reports whether at least one target has a registered provider.
func (c *Chain) Configured() bool {
	for _, target := range c.targets {
		if _, err := c.registry.GetProvider(target.Provider); err == nil {
			return true
		}
	}
	return false
}

// Complete fills request.Model from each target in turn. It returns
// ErrNotConfigured when no target has a provider, ErrEmptyResponse as soon
// as a model answers with no content, and wraps ErrAllModelsFailed around
// the per-target errors otherwise.
func (c *Chain) Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	var result *multierror.Error
	attempted := 0

	for _, target := range c.targets {
		provider, err := c.registry.GetProvider(target.Provider)
		if err != nil {
			continue
		}
		attempted++

		resp, err := c.attempt(ctx, provider, target, request)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrEmptyResponse) {
			c.logger.WithField("model", target.String()).Info("Model returned an empty answer")
			return nil, fmt.Errorf("%s: %w", target, err)
		}

		c.logger.WithError(err).WithFields(logger.Fields{
			"model":      target.String(),
			"error_type": KindOf(err),
		}).Warn("Model failed, trying next")
		result = multierror.Append(result, fmt.Errorf("%s: %w", target, err))

		if ctx.Err() != nil {
			break
		}
	}

	if attempted == 0 {
		return nil, ErrNotConfigured
	}
	return nil, fmt.Errorf("%w: %w", ErrAllModelsFailed, result.ErrorOrNil())
}

func (c *Chain) attempt(ctx context.Context, provider Provider, target Target, request CompletionRequest) (*CompletionResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request.Model = target.Model
	start := time.Now()
	resp, err := provider.Complete(ctx, request)
	if err != nil {
		return nil, err
	}
	if resp.Content == "" {
		return nil, ErrEmptyResponse
	}

	c.logger.WithFields(logger.Fields{
		"model":       target.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Completion received")
	return resp, nil
}
