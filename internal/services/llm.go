package services

import (
	"context"
	"errors"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// ErrEmptyCompletion is returned when a model answers with no text.
var ErrEmptyCompletion = errors.New("received empty response from API")

// CompletionRequest is one chat completion call. Models are tried in order
// until one returns text.
type CompletionRequest struct {
	Messages    []chat.ChatMessage
	Models      []string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Completion is the text produced by the model that answered.
type Completion struct {
	Content string
	Model   string
}

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Chat sends the conversation and returns the first non-empty completion
	Chat(ctx context.Context, req CompletionRequest) (*Completion, error)

	// ListModels returns the model ids the provider offers
	ListModels(ctx context.Context) ([]string, error)
}
