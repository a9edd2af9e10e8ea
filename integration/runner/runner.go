package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running dm-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// conversation is the client-side view of one suite run.
type conversation struct {
	sessionID string
	state     string
	history   []chat.ChatMessage
	lastDM    string
	player    string
	lastRoll  *chat.LastRoll
}

func newConversation(suite TestSuite) *conversation {
	c := &conversation{
		sessionID: uuid.NewString(),
		state:     suite.StateSection,
	}
	c.seed(suite.SeedHistory)
	return c
}

func (c *conversation) seed(turns []HistoryTurn) {
	c.history = c.history[:0]
	c.lastDM, c.player, c.lastRoll = "", "", nil
	for _, t := range turns {
		c.history = append(c.history, chat.ChatMessage{Role: t.Role, Content: t.Content})
		if t.Role == chat.ChatRoleAgent {
			c.lastDM = t.Content
		}
	}
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	conv := newConversation(suite)
	result := TestRunResult{
		Job:       TestJob{Name: suite.Name, Suite: suite},
		Results:   make([]TestResult, 0, len(suite.Steps)),
		SessionID: conv.sessionID,
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, conv, suite, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) executeStep(ctx context.Context, conv *conversation, suite TestSuite, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	switch step.UserPrompt {
	case ResetSessionPrompt:
		result.IsReset = true
		if err := r.deleteSession(stepCtx, conv.sessionID); err != nil {
			result.Error = fmt.Errorf("failed to reset session: %w", err)
		} else {
			conv.seed(suite.SeedHistory)
			result.Success = true
		}

	case OptionsPrompt:
		var resp chat.OptionsResponse
		err := r.post(stepCtx, "/v1/dm/options", chat.OptionsRequest{
			SessionID:     conv.sessionID,
			LastDMText:    conv.lastDM,
			PlayerMessage: conv.player,
			StateSection:  conv.state,
			History:       conv.history,
			LastRoll:      conv.lastRoll,
		}, &resp)
		if err != nil {
			result.Error = err
			break
		}
		result.ResponseText = strings.Join(resp.Options, "\n")
		if len(resp.Options) != 3 {
			result.Error = fmt.Errorf("expected 3 options, got %d", len(resp.Options))
			break
		}
		if err := CheckExpectations(step.Expectations, &chat.DMResponse{Text: result.ResponseText}); err != nil {
			result.Error = err
			break
		}
		result.Success = true

	default:
		var resp chat.DMResponse
		err := r.post(stepCtx, "/v1/dm/respond", chat.DMRequest{
			SessionID:    conv.sessionID,
			Message:      step.UserPrompt,
			StateSection: conv.state,
			History:      conv.history,
		}, &resp)
		if err != nil {
			result.Error = err
			break
		}
		result.ResponseText = resp.Text

		conv.history = append(conv.history,
			chat.ChatMessage{Role: chat.ChatRoleUser, Content: step.UserPrompt},
			chat.ChatMessage{Role: chat.ChatRoleAgent, Content: resp.Text})
		conv.player = step.UserPrompt
		conv.lastDM = resp.Text
		if resp.LastRoll != nil {
			conv.lastRoll = resp.LastRoll
		}

		if err := CheckExpectations(step.Expectations, &resp); err != nil {
			result.Error = err
			break
		}
		result.Success = true
	}

	result.Duration = time.Since(start)
	return result
}

// CheckExpectations compares one DM response against a step's expectations.
func CheckExpectations(exp Expectations, resp *chat.DMResponse) error {
	text := resp.Text
	lower := strings.ToLower(text)

	for _, want := range exp.ResponseContains {
		if !strings.Contains(lower, strings.ToLower(want)) {
			return fmt.Errorf("response does not contain %q: %s", want, text)
		}
	}
	for _, unwanted := range exp.ResponseNotContains {
		if strings.Contains(lower, strings.ToLower(unwanted)) {
			return fmt.Errorf("response contains %q: %s", unwanted, text)
		}
	}
	if exp.ResponseRegex != "" {
		re, err := regexp.Compile(exp.ResponseRegex)
		if err != nil {
			return fmt.Errorf("invalid response_regex %q: %w", exp.ResponseRegex, err)
		}
		if !re.MatchString(text) {
			return fmt.Errorf("response does not match %q: %s", exp.ResponseRegex, text)
		}
	}
	if exp.ResponseMinLength != nil && len(text) < *exp.ResponseMinLength {
		return fmt.Errorf("response length %d below minimum %d", len(text), *exp.ResponseMinLength)
	}
	if exp.ResponseMaxLength != nil && len(text) > *exp.ResponseMaxLength {
		return fmt.Errorf("response length %d above maximum %d", len(text), *exp.ResponseMaxLength)
	}

	if exp.NoRollRequests && len(resp.RollRequests) > 0 {
		return fmt.Errorf("expected no roll requests, got %d", len(resp.RollRequests))
	}
	if len(exp.RollRequestTypes) > 0 {
		got := make([]string, 0, len(resp.RollRequests))
		for _, rr := range resp.RollRequests {
			got = append(got, rr.Type)
		}
		if !slices.Equal(got, exp.RollRequestTypes) {
			return fmt.Errorf("roll request types %v, expected %v", got, exp.RollRequestTypes)
		}
	}

	if exp.LastRollKind == nil && exp.LastRollSuccess == nil && exp.LastRollDC == nil && exp.LastRollAC == nil {
		return nil
	}
	last := resp.LastRoll
	if last == nil {
		return fmt.Errorf("expected last_roll in response")
	}
	if exp.LastRollKind != nil && last.Kind != *exp.LastRollKind {
		return fmt.Errorf("last roll kind %q, expected %q", last.Kind, *exp.LastRollKind)
	}
	if exp.LastRollSuccess != nil && (last.Success == nil || *last.Success != *exp.LastRollSuccess) {
		return fmt.Errorf("last roll success %v, expected %v", describeBool(last.Success), *exp.LastRollSuccess)
	}
	if exp.LastRollDC != nil && (last.DC == nil || *last.DC != *exp.LastRollDC) {
		return fmt.Errorf("last roll dc %v, expected %d", describeInt(last.DC), *exp.LastRollDC)
	}
	if exp.LastRollAC != nil && (last.AC == nil || *last.AC != *exp.LastRollAC) {
		return fmt.Errorf("last roll ac %v, expected %d", describeInt(last.AC), *exp.LastRollAC)
	}
	return nil
}

func describeBool(b *bool) string {
	if b == nil {
		return "<unset>"
	}
	return fmt.Sprint(*b)
}

func describeInt(n *int) string {
	if n == nil {
		return "<unset>"
	}
	return fmt.Sprint(*n)
}

func (r *Runner) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s returned %d: %s", path, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (r *Runner) deleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.BaseURL+"/v1/dm/sessions/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE session failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("DELETE session returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
