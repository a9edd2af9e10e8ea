package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	ChatFunc       func(ctx context.Context, req CompletionRequest) (*Completion, error)
	ListModelsFunc func(ctx context.Context) ([]string, error)

	// Track calls for testing
	ChatCalls       []CompletionRequest
	ListModelsCalls int

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		ChatCalls: make([]CompletionRequest, 0),
	}
}

// Chat mocks a completion call
func (m *MockLLMAPI) Chat(ctx context.Context, req CompletionRequest) (*Completion, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	model := ""
	if len(req.Models) > 0 {
		model = req.Models[0]
	}
	return &Completion{Content: "Mock response", Model: model}, nil
}

// ListModels mocks model listing
func (m *MockLLMAPI) ListModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.ListModelsCalls++
	fn := m.ListModelsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return []string{"foo"}, nil
}

// SetChatResponse sets up the mock to answer every call with content
func (m *MockLLMAPI) SetChatResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, req CompletionRequest) (*Completion, error) {
		model := ""
		if len(req.Models) > 0 {
			model = req.Models[0]
		}
		return &Completion{Content: content, Model: model}, nil
	}
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, req CompletionRequest) (*Completion, error) {
		return nil, err
	}
}

// SetListModelsError sets up the mock to return an error on ListModels
func (m *MockLLMAPI) SetListModelsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListModelsFunc = func(ctx context.Context) ([]string, error) {
		return nil, err
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = make([]CompletionRequest, 0)
	m.ListModelsCalls = 0
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]CompletionRequest, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chatCalls := make([]CompletionRequest, len(m.ChatCalls))
	copy(chatCalls, m.ChatCalls)

	return chatCalls, m.ListModelsCalls
}
