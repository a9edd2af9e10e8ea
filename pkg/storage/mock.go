package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[string][]chat.ChatMessage
	pingError error
	loadError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string][]chat.ChatMessage),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetLoadError configures the mock to fail on RecentTurns
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// SetSaveError configures the mock to fail on AppendTurns
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// AppendTurns mocks appending to a session
func (m *MockStorage) AppendTurns(ctx context.Context, sessionID string, turns ...chat.ChatMessage) error {
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[sessionID] = append(m.sessions[sessionID], turns...)
	return nil
}

// RecentTurns mocks loading the tail of a session
func (m *MockStorage) RecentTurns(ctx context.Context, sessionID string, n int) ([]chat.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	turns := m.sessions[sessionID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]chat.ChatMessage, len(turns))
	copy(out, turns)
	return out, nil
}

// DeleteSession mocks session removal
func (m *MockStorage) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	delete(m.sessions, sessionID)
	return nil
}

// Sessions returns a copy of every stored session, for assertions.
func (m *MockStorage) Sessions() map[string][]chat.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]chat.ChatMessage, len(m.sessions))
	for id, turns := range m.sessions {
		out[id] = append([]chat.ChatMessage(nil), turns...)
	}
	return out
}
