package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// DefaultHistoryLimit is how many trailing turns are quoted in a prompt.
const DefaultHistoryLimit = 5

// Builder constructs chat messages for LLM interaction using a fluent interface.
// The context (state section and recent history) and the player's message are
// folded into a single user message after the system prompt.
type Builder struct {
	systemPrompt string
	stateSection string
	history      []chat.ChatMessage
	historyLimit int
	userMessage  string
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		systemPrompt: NarratorSystemPrompt,
		historyLimit: DefaultHistoryLimit,
	}
}

// WithSystemPrompt replaces the narrator system prompt.
func (b *Builder) WithSystemPrompt(prompt string) *Builder {
	b.systemPrompt = prompt
	return b
}

// WithStateSection sets the client-rendered game state block.
func (b *Builder) WithStateSection(section string) *Builder {
	b.stateSection = section
	return b
}

// WithHistory sets the chronological conversation so far.
func (b *Builder) WithHistory(history []chat.ChatMessage) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithUserMessage sets the player's message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if strings.TrimSpace(b.systemPrompt) == "" {
		return nil, fmt.Errorf("system prompt is required")
	}
	if strings.TrimSpace(b.userMessage) == "" {
		return nil, fmt.Errorf("user message is required")
	}

	var bits []string
	if b.stateSection != "" {
		bits = append(bits, b.stateSection)
	}
	if recent := FormatHistory(b.history, b.historyLimit); recent != "" {
		bits = append(bits, "RECENT HISTORY:\n"+recent)
	}
	ctxText := strings.TrimSpace(strings.Join(bits, "\n\n"))

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: b.systemPrompt},
		{Role: chat.ChatRoleUser, Content: strings.TrimSpace(ctxText + "\n\nPlayer: " + b.userMessage)},
	}, nil
}

// FormatHistory renders the last limit turns as "role: content" lines.
func FormatHistory(history []chat.ChatMessage, limit int) string {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// BuildMessages is a convenience function for the common case.
// It creates a builder, sets all parameters, and builds the messages in one call.
func BuildMessages(stateSection string, history []chat.ChatMessage, message string) ([]chat.ChatMessage, error) {
	return New().
		WithStateSection(stateSection).
		WithHistory(history).
		WithUserMessage(message).
		Build()
}
