package runner

import (
	"time"
)

// Special user prompt values that trigger non-chat actions
const (
	ResetSessionPrompt = "RESET_SESSION"
	OptionsPrompt      = "OPTIONS"
)

// TestSuite defines a complete integration test conversation.
// It either has Steps, or lists other case files in Cases.
type TestSuite struct {
	Name         string        `json:"name"`
	StateSection string        `json:"state_section,omitempty"`
	SeedHistory  []HistoryTurn `json:"seed_history,omitempty"`
	Steps        []TestStep    `json:"steps,omitempty"`
	Cases        []string      `json:"cases,omitempty"`
}

// HistoryTurn is a seeded conversation turn.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single test interaction and its expected outcomes.
// Use user_prompt "RESET_SESSION" to forget the session and the seed history,
// or "OPTIONS" to ask for next-action suggestions.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	UserPrompt   string       `json:"user_prompt"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Structured response fields
	RollRequestTypes []string `json:"roll_request_types,omitempty"` // exact, in order
	NoRollRequests   bool     `json:"no_roll_requests,omitempty"`
	LastRollKind     *string  `json:"last_roll_kind,omitempty"`
	LastRollSuccess  *bool    `json:"last_roll_success,omitempty"`
	LastRollDC       *int     `json:"last_roll_dc,omitempty"`
	LastRollAC       *int     `json:"last_roll_ac,omitempty"`

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
	ResponseMinLength   *int     `json:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `json:"response_max_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // True for RESET_SESSION steps, which do not count toward pass/fail
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID string
}
