package ai

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/sashabaranov/go-openai"
)

type OpenAICompatibleClient struct {
	name   string
	client *openai.Client
	logger logger.Logger
}

func NewOpenAICompatibleClient(cfg config.AIProviderConfig, httpClient *http.Client, log logger.Logger) *OpenAICompatibleClient {
	return newOpenAICompatibleClient(cfg.Name, cfg.BaseURL, cfg.GetAPIKey(), cfg.Headers, httpClient, log)
}

func newOpenAICompatibleClient(
	name string,
	baseURL string,
	apiKey string,
	headers map[string]string,
	httpClient *http.Client,
	log logger.Logger,
) *OpenAICompatibleClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if len(headers) > 0 {
		httpClient = withHeaders(httpClient, headers)
	}
	clientConfig.HTTPClient = httpClient

	return &OpenAICompatibleClient{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		logger: log,
	}
}

func (c *OpenAICompatibleClient) Name() string {
	return c.name
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, m := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	c.logger.WithFields(logger.Fields{
		"provider": c.name,
		"model":    request.Model,
		"messages": len(messages),
	}).Debug("Sending completion request")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       request.Model,
		Messages:    messages,
		Temperature: request.Temperature,
		TopP:        request.TopP,
		MaxTokens:   request.MaxTokens,
	})
	if err != nil {
		return nil, c.wrapError(request.Model, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			Provider: c.name,
			Model:    request.Model,
			Message:  "no choices in response",
		}
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Provider:     c.name,
		Model:        request.Model,
		Content:      strings.TrimSpace(choice.Message.Content),
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (c *OpenAICompatibleClient) wrapError(model string, err error) *ProviderError {
	perr := &ProviderError{
		Err:      err,
		Provider: c.name,
		Model:    model,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		perr.StatusCode = apiErr.HTTPStatusCode
		perr.Message = apiErr.Message
		if apiErr.Code != nil {
			perr.Code = fmt.Sprint(apiErr.Code)
		}
	case errors.As(err, &reqErr):
		perr.StatusCode = reqErr.HTTPStatusCode
	}
	return perr
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	return t.base.RoundTrip(req)
}

// withHeaders returns a copy of client whose requests always carry headers.
func withHeaders(client *http.Client, headers map[string]string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *client
	clone.Transport = &headerTransport{base: base, headers: maps.Clone(headers)}
	return &clone
}
