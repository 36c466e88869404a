package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"google.golang.org/genai"
)

type GeminiClient struct {
	name   string
	client *genai.Client
	logger logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.AIProviderConfig, httpClient *http.Client, log logger.Logger) (*GeminiClient, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.GetAPIKey(),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		name:   cfg.Name,
		client: client,
		logger: log,
	}, nil
}

func (c *GeminiClient) Name() string {
	return c.name
}

func (c *GeminiClient) Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	var systemParts []*genai.Part
	var contents []*genai.Content
	for _, m := range request.Messages {
		switch m.Role {
		case RoleSystem:
			systemParts = append(systemParts, &genai.Part{Text: m.Content})
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(request.Temperature),
		MaxOutputTokens: int32(request.MaxTokens),
	}
	if request.TopP > 0 {
		generateConfig.TopP = genai.Ptr(request.TopP)
	}
	if len(systemParts) > 0 {
		generateConfig.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	resp, err := c.client.Models.GenerateContent(ctx, request.Model, contents, generateConfig)
	if err != nil {
		perr := &ProviderError{
			Err:      err,
			Provider: c.name,
			Model:    request.Model,
		}
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			perr.StatusCode = apiErr.Code
			perr.Code = apiErr.Status
			perr.Message = apiErr.Message
		}
		return nil, perr
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &ProviderError{
			Provider: c.name,
			Model:    request.Model,
			Message:  "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}

	return &CompletionResponse{
		Provider:     c.name,
		Model:        request.Model,
		Content:      strings.TrimSpace(text.String()),
		FinishReason: string(candidate.FinishReason),
	}, nil
}
