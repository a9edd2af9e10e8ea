package chat

import (
	"fmt"
	"strings"
)

// MaxMessageLength is the longest player message accepted by the API.
const MaxMessageLength = 4000

// MaxHistoryLength caps the number of history entries a client may send.
const MaxHistoryLength = 200

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // DM
	ChatRoleSystem = "system"    // Narrator or system
)

// ChatMessage is a single turn in the conversation.
// The same shape is used for OpenAI-compatible LLM APIs.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// NarrationSegment is one renderable piece of a DM response.
type NarrationSegment struct {
	Type          string `json:"type"`
	Text          string `json:"text"`
	Character     string `json:"character,omitempty"`
	VoiceCategory string `json:"voice_category,omitempty"`
}

// DMRequest is a player turn sent to the dm-engine api.
type DMRequest struct {
	SessionID    string         `json:"session_id,omitempty"`
	Message      string         `json:"message"`
	Context      map[string]any `json:"context,omitempty"`
	StateSection string         `json:"state_section,omitempty"`
	History      []ChatMessage  `json:"history,omitempty"`
}

// DMResponse is the DM's answer to a player turn.
type DMResponse struct {
	Text              string             `json:"text"`
	NarrationSegments []NarrationSegment `json:"narration_segments,omitempty"`
	RollRequests      []RollRequest      `json:"roll_requests,omitempty"`
	LastRoll          *LastRoll          `json:"last_roll,omitempty"`
}

// RollRequest asks the player to roll. Fields that do not apply are omitted.
type RollRequest struct {
	Type         string `json:"type"`
	Formula      string `json:"formula,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	DC           *int   `json:"dc,omitempty"`
	AC           *int   `json:"ac,omitempty"`
	Advantage    *bool  `json:"advantage,omitempty"`
	Disadvantage *bool  `json:"disadvantage,omitempty"`
}

// LastRoll summarizes a resolved roll so clients can pass it back to the
// options endpoint.
type LastRoll struct {
	Kind    string `json:"kind,omitempty"`
	Skill   string `json:"skill,omitempty"`
	DC      *int   `json:"dc,omitempty"`
	AC      *int   `json:"ac,omitempty"`
	Result  int    `json:"result"`
	Success *bool  `json:"success,omitempty"`
}

// OptionsRequest asks for three next-action suggestions.
type OptionsRequest struct {
	SessionID     string        `json:"session_id,omitempty"`
	LastDMText    string        `json:"last_dm_text"`
	PlayerMessage string        `json:"player_message,omitempty"`
	StateSection  string        `json:"state_section,omitempty"`
	History       []ChatMessage `json:"history,omitempty"`
	LastRoll      *LastRoll     `json:"last_roll,omitempty"`
}

// OptionsResponse always carries exactly three options.
type OptionsResponse struct {
	Options []string `json:"options"`
}

// ErrorResponse is returned by handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (r *DMRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(r.Message) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return validateHistory(r.History)
}

func (r *OptionsRequest) Validate() error {
	if len(r.PlayerMessage) > MaxMessageLength {
		return fmt.Errorf("player_message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return validateHistory(r.History)
}

func validateHistory(history []ChatMessage) error {
	if len(history) > MaxHistoryLength {
		return fmt.Errorf("history exceeds maximum of %d entries", MaxHistoryLength)
	}
	for i, msg := range history {
		switch msg.Role {
		case ChatRoleUser, ChatRoleAgent, ChatRoleSystem:
		default:
			return fmt.Errorf("history[%d] has unknown role %q", i, msg.Role)
		}
	}
	return nil
}
