package runner

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dm-engine/internal/dm"
	"github.com/jwebster45206/dm-engine/internal/handlers"
	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := dm.NewService(nil, storage.NewMockStorage(), dm.Settings{}, log)

	mux := http.NewServeMux()
	mux.Handle("/v1/dm/respond", handlers.NewRespondHandler(svc, log))
	mux.Handle("/v1/dm/options", handlers.NewOptionsHandler(svc, log))
	mux.Handle("/v1/dm/sessions/", handlers.NewSessionHandler(svc, log))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func ptr[T any](v T) *T { return &v }

func TestRunSuite_HeuristicConversation(t *testing.T) {
	srv := newTestServer(t)
	r := NewRunner(srv.URL)

	suite := TestSuite{
		Name: "stealth then attack",
		Steps: []TestStep{
			{
				Name:       "ask to sneak",
				UserPrompt: "I try to sneak past the guards (DC 14)",
				Expectations: Expectations{
					RollRequestTypes: []string{"check"},
					ResponseContains: []string{"Stealth check (DC 14)"},
				},
			},
			{
				Name:       "report roll",
				UserPrompt: "I rolled a 16",
				Expectations: Expectations{
					NoRollRequests:   true,
					LastRollKind:     ptr("check"),
					LastRollSuccess:  ptr(true),
					LastRollDC:       ptr(14),
					ResponseRegex:    `(?m)^A\. \*\*`,
					ResponseContains: []string{"What do you do next?"},
				},
			},
			{Name: "options", UserPrompt: OptionsPrompt},
			{Name: "reset", UserPrompt: ResetSessionPrompt},
			{
				Name:       "roll with nothing pending",
				UserPrompt: "total: 9",
				Expectations: Expectations{
					ResponseContains: []string{"Roll total recorded: 9."},
				},
			},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, result.Results, 5)
	for _, step := range result.Results {
		assert.True(t, step.Success, "%s: %v", step.StepName, step.Error)
	}
	assert.True(t, result.Results[3].IsReset)
	assert.NotEmpty(t, result.SessionID)
}

func TestRunSuite_SeedHistoryAndFailures(t *testing.T) {
	srv := newTestServer(t)
	r := NewRunner(srv.URL)
	r.ErrorHandlingMode = ErrorHandlingExit

	suite := TestSuite{
		Name: "seeded attack",
		SeedHistory: []HistoryTurn{
			{Role: chat.ChatRoleUser, Content: "I swing at the skeleton."},
			{Role: chat.ChatRoleAgent, Content: "Make an attack roll against its AC 11."},
		},
		Steps: []TestStep{
			{
				Name:         "miss expectation fails",
				UserPrompt:   "I rolled 12",
				Expectations: Expectations{LastRollSuccess: ptr(false)},
			},
			{Name: "never runs", UserPrompt: "hello"},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Error.Error(), "last roll success")
}

func TestCheckExpectations(t *testing.T) {
	dc := 12
	resp := &chat.DMResponse{
		Text:         "Please roll Perception check (DC 12).",
		RollRequests: []chat.RollRequest{{Type: "check", DC: &dc}},
	}

	tests := []struct {
		name    string
		exp     Expectations
		wantErr string
	}{
		{"empty", Expectations{}, ""},
		{"contains is case-insensitive", Expectations{ResponseContains: []string{"perception"}}, ""},
		{"missing text", Expectations{ResponseContains: []string{"Stealth"}}, "does not contain"},
		{"forbidden text", Expectations{ResponseNotContains: []string{"roll"}}, "contains"},
		{"regex", Expectations{ResponseRegex: `DC \d+`}, ""},
		{"bad regex", Expectations{ResponseRegex: `(`}, "invalid response_regex"},
		{"too short", Expectations{ResponseMinLength: ptr(100)}, "below minimum"},
		{"too long", Expectations{ResponseMaxLength: ptr(5)}, "above maximum"},
		{"types", Expectations{RollRequestTypes: []string{"check"}}, ""},
		{"wrong types", Expectations{RollRequestTypes: []string{"save"}}, "roll request types"},
		{"unexpected requests", Expectations{NoRollRequests: true}, "expected no roll requests"},
		{"missing last roll", Expectations{LastRollDC: ptr(12)}, "expected last_roll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExpectations(tt.exp, resp)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a.json", `{"name":"a","steps":[{"user_prompt":"hi","expect":{}}]}`)
	write("b.json", `{"name":"b","steps":[{"user_prompt":"yo","expect":{}}]}`)
	write("all.json", `{"name":"all","cases":["a.json","b.json"]}`)
	write("broken.json", `{"name":`)

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(dir, "all.json"), dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "b", jobs[1].Name)

	_, err = LoadTestSuiteWithExpansion(filepath.Join(dir, "broken.json"), dir)
	assert.Error(t, err)
}
