package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
)

var (
	ErrInvalidModelFormat = errors.New("invalid model format, expected provider:model")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrUnknownProvider    = errors.New("unknown provider type")
)

type ProviderRegistry struct {
	providers      map[string]Provider
	providersMutex sync.RWMutex
	logger         logger.Logger
}

func NewProviderRegistry(log logger.Logger) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
		logger:    log,
	}
}

// NewRegistryFromConfig registers every configured provider that has a
// credential. Providers without a key are left out so that targets pointing
// at them report ErrNotConfigured instead of failing over the network.
func NewRegistryFromConfig(ctx context.Context, providers []config.AIProviderConfig, httpClient *http.Client, log logger.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry(log)
	for _, cfg := range providers {
		if cfg.GetAPIKey() == "" {
			log.WithFields(logger.Fields{
				"provider": cfg.Name,
				"key_env":  cfg.EnvAPIKey,
			}).Warn("AI provider has no API key, skipping")
			continue
		}
		provider, err := NewProvider(ctx, cfg, httpClient, log)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", cfg.Name, err)
		}
		registry.RegisterProvider(cfg.Name, provider)
		log.WithFields(logger.Fields{
			"provider": cfg.Name,
			"type":     cfg.Type,
		}).Debug("AI provider registered")
	}
	return registry, nil
}

func NewProvider(ctx context.Context, cfg config.AIProviderConfig, httpClient *http.Client, log logger.Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenai:
		return NewOpenAICompatibleClient(cfg, httpClient, log), nil
	case ProviderOpenrouter:
		return NewOpenRouterClient(cfg, httpClient, log), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, httpClient, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Type)
	}
}

func (r *ProviderRegistry) RegisterProvider(name string, provider Provider) {
	r.providersMutex.Lock()
	defer r.providersMutex.Unlock()
	r.providers[name] = provider
}

func (r *ProviderRegistry) GetProvider(name string) (Provider, error) {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

func (r *ProviderRegistry) Providers() []string {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveModel returns the provider and bare model name for a
// "provider:model" spec.
func (r *ProviderRegistry) ResolveModel(modelSpec string) (Provider, string, error) {
	providerName, modelName, err := ParseModelSpec(modelSpec)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", err, modelSpec)
	}
	provider, err := r.GetProvider(providerName)
	if err != nil {
		return nil, "", err
	}
	return provider, modelName, nil
}
