package ai

import (
	"maps"
	"net/http"

	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterClient talks to OpenRouter through its OpenAI-compatible API and
// identifies the bot with the attribution headers OpenRouter expects.
type OpenRouterClient struct {
	*OpenAICompatibleClient
}

func NewOpenRouterClient(cfg config.AIProviderConfig, httpClient *http.Client, log logger.Logger) *OpenRouterClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}

	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	if cfg.Title != "" {
		headers["X-Title"] = cfg.Title
	}
	maps.Copy(headers, cfg.Headers)

	return &OpenRouterClient{
		OpenAICompatibleClient: newOpenAICompatibleClient(cfg.Name, baseURL, cfg.GetAPIKey(), headers, httpClient, log),
	}
}
