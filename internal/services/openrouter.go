package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultLLMTimeout = 60 * time.Second
)

// OpenRouterConfig holds the settings for an OpenRouterService.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	// Sent as HTTP-Referer and X-Title for OpenRouter attribution.
	SiteURL   string
	SiteTitle string
	Timeout   time.Duration
}

// OpenRouterService implements LLMService over OpenRouter's OpenAI-compatible API
type OpenRouterService struct {
	client *openai.Client
	logger *slog.Logger
}

var _ LLMService = (*OpenRouterService)(nil)

// NewOpenRouterService creates a new OpenRouter service
func NewOpenRouterService(cfg OpenRouterConfig, logger *slog.Logger) *OpenRouterService {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = openRouterBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	config.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &attributionTransport{
			base:    http.DefaultTransport,
			referer: cfg.SiteURL,
			title:   cfg.SiteTitle,
		},
	}

	return &OpenRouterService{
		client: openai.NewClientWithConfig(config),
		logger: logger,
	}
}

// Chat tries each model in turn and returns the first non-empty answer.
// The error from the last attempt is returned when every model fails.
func (s *OpenRouterService) Chat(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}
	if len(req.Models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	var lastErr error
	for _, model := range req.Models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := s.complete(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			s.logger.Warn("LLM completion failed", "model", model, "error", err)
			lastErr = err
			continue
		}

		s.logger.Debug("LLM completion succeeded", "model", model, "length", len(content))
		return &Completion{Content: content, Model: model}, nil
	}

	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

func (s *OpenRouterService) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("API request failed with status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// ListModels retrieves available models from OpenRouter
func (s *OpenRouterService) ListModels(ctx context.Context) ([]string, error) {
	list, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// attributionTransport adds OpenRouter's optional attribution headers.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer == "" && t.title == "" {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if t.referer != "" {
		clone.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		clone.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(clone)
}

// PromptMessages builds the system + user pair most calls send.
func PromptMessages(system, user string) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: system},
		{Role: chat.ChatRoleUser, Content: user},
	}
}
