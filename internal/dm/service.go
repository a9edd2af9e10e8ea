// Package dm answers player turns. It runs the rule-based roll follow-up
// first, then LLM narration when configured, then heuristics.
package dm

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jwebster45206/dm-engine/internal/logger"
	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/dialogue"
	"github.com/jwebster45206/dm-engine/pkg/prompts"
	"github.com/jwebster45206/dm-engine/pkg/storage"
	"github.com/jwebster45206/dm-engine/pkg/textfilter"
)

// Sampling settings for each kind of LLM call.
const (
	narrationTemperature = 0.8
	narrationMaxTokens   = 600

	optionsTemperature = 0.7
	optionsTopP        = 0.9
	optionsMaxTokens   = 220
)

// SegmentTypeDM marks narration spoken by the DM.
const SegmentTypeDM = "dm"

// Settings tune a Service.
type Settings struct {
	// Models are tried in order for narration.
	Models []string
	// OptionsModel generates option menus.
	OptionsModel string
	// InlineOptions appends the exploration menu to open-ended replies.
	InlineOptions bool
	// Filter, when set, softens profanity in LLM output.
	Filter *textfilter.Filter
}

// Service is safe for concurrent use. llm and store may be nil.
type Service struct {
	llm      services.LLMService
	store    storage.Storage
	settings Settings
	logger   *slog.Logger
}

// NewService creates a DM service. Pass a nil llm to answer with heuristics
// only and a nil store to keep no session history.
func NewService(llm services.LLMService, store storage.Storage, settings Settings, logger *slog.Logger) *Service {
	return &Service{
		llm:      llm,
		store:    store,
		settings: settings,
		logger:   logger,
	}
}

// Respond produces the DM's reply to one player message.
func (s *Service) Respond(ctx context.Context, req *chat.DMRequest) (*chat.DMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, s.logger)

	history := s.loadHistory(ctx, log, req.SessionID, req.History)

	var resp *chat.DMResponse
	if total, ok := dialogue.ExtractRollTotal(req.Message); ok {
		resp = s.resolveRoll(log, history, total)
	} else {
		resp = s.narrate(ctx, log, req, history)
	}
	resp.NarrationSegments = []chat.NarrationSegment{{Type: SegmentTypeDM, Text: resp.Text}}

	s.remember(ctx, log, req.SessionID,
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: req.Message},
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: resp.Text},
	)

	return resp, nil
}

// resolveRoll handles a message that reports a roll total.
func (s *Service) resolveRoll(log *slog.Logger, history []chat.ChatMessage, total int) *chat.DMResponse {
	pending := dialogue.ResolvePendingRoll(history)
	outcome := dialogue.EvaluateOutcome(pending, total)
	menu := dialogue.GenerateOptions(pending.Kind, pending.Skill, outcome.Success)

	last := &chat.LastRoll{
		Kind:    string(pending.Kind),
		Skill:   string(pending.Skill),
		Result:  total,
		Success: outcome.Success,
	}
	if dc, ok := pending.EffectiveDC(); ok {
		last.DC = &dc
	}
	if ac, ok := pending.EffectiveAC(); ok {
		last.AC = &ac
	}

	log.Debug("Resolved reported roll",
		"kind", pending.Kind,
		"skill", pending.Skill,
		"total", total,
		"result", resultLabel(outcome.Success))
	responsesTotal.WithLabelValues(pathRoll).Inc()
	rollOutcomesTotal.WithLabelValues(kindLabel(pending.Kind), resultLabel(outcome.Success)).Inc()

	return &chat.DMResponse{
		Text:     outcome.Summary + " " + dialogue.NextStepPrompt + "\n" + menu.String(),
		LastRoll: last,
	}
}

// narrate handles a fresh action. Roll requests always come from the rules;
// the LLM only supplies prose.
func (s *Service) narrate(ctx context.Context, log *slog.Logger, req *chat.DMRequest, history []chat.ChatMessage) *chat.DMResponse {
	requests := dialogue.ClassifyNewRequest(req.Message)

	if s.llm != nil {
		text, err := s.generate(ctx, req, history)
		if err == nil {
			if s.settings.InlineOptions && len(requests) == 0 && !strings.Contains(text, "A.") {
				text = strings.TrimRightFunc(text, unicode.IsSpace) + " " + dialogue.NextStepPrompt + "\n" + dialogue.ExplorationMenu.String()
			}
			responsesTotal.WithLabelValues(pathLLM).Inc()
			return &chat.DMResponse{Text: text, RollRequests: requests}
		}
		logger.WithError(log, err).Warn("LLM narration failed, using heuristic response")
		responsesTotal.WithLabelValues(pathLLMFallback).Inc()
	} else {
		responsesTotal.WithLabelValues(pathHeuristic).Inc()
	}

	text := dialogue.RenderRollPrompt(requests)
	if text == "" {
		text = dialogue.RenderNarrative(s.settings.InlineOptions)
	}
	return &chat.DMResponse{Text: text, RollRequests: requests}
}

func (s *Service) generate(ctx context.Context, req *chat.DMRequest, history []chat.ChatMessage) (string, error) {
	messages, err := prompts.BuildMessages(req.StateSection, history, req.Message)
	if err != nil {
		return "", err
	}

	completion, err := s.llm.Chat(ctx, services.CompletionRequest{
		Messages:    messages,
		Models:      s.settings.Models,
		Temperature: narrationTemperature,
		MaxTokens:   narrationMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return s.clean(completion.Content), nil
}

func (s *Service) clean(text string) string {
	if s.settings.Filter == nil {
		return text
	}
	return s.settings.Filter.Clean(text)
}

// Options suggests three next actions. It never fails for lack of an LLM:
// the exploration menu is served instead.
func (s *Service) Options(ctx context.Context, req *chat.OptionsRequest) (*chat.OptionsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, s.logger)

	if s.llm == nil {
		optionsTotal.WithLabelValues(sourceFallback).Inc()
		return &chat.OptionsResponse{Options: dialogue.ExplorationMenu.Lines()}, nil
	}

	history := s.loadHistory(ctx, log, req.SessionID, req.History)

	model := s.settings.OptionsModel
	models := []string{model}
	if model == "" {
		models = s.settings.Models
	}

	completion, err := s.llm.Chat(ctx, services.CompletionRequest{
		Messages:    prompts.BuildOptionsMessages(req, history),
		Models:      models,
		Temperature: optionsTemperature,
		TopP:        optionsTopP,
		MaxTokens:   optionsMaxTokens,
	})
	if err != nil {
		logger.WithError(log, err).Warn("Options generation failed, using fallback menu")
		optionsTotal.WithLabelValues(sourceFallback).Inc()
		return &chat.OptionsResponse{Options: dialogue.ExplorationMenu.Lines()}, nil
	}

	optionsTotal.WithLabelValues(sourceLLM).Inc()
	menu := dialogue.NormalizeOptions(s.clean(completion.Content))
	return &chat.OptionsResponse{Options: menu.Lines()}, nil
}

// loadHistory prefers client-sent history and falls back to the session store.
func (s *Service) loadHistory(ctx context.Context, log *slog.Logger, sessionID string, sent []chat.ChatMessage) []chat.ChatMessage {
	if len(sent) > 0 || s.store == nil || sessionID == "" {
		return sent
	}

	turns, err := s.store.RecentTurns(ctx, sessionID, dialogue.HistoryWindow)
	if err != nil {
		logger.WithError(log, err).Warn("Failed to load session history", "session_id", sessionID)
		sessionErrorsTotal.WithLabelValues("load").Inc()
		return nil
	}
	return turns
}

func (s *Service) remember(ctx context.Context, log *slog.Logger, sessionID string, turns ...chat.ChatMessage) {
	if s.store == nil || sessionID == "" {
		return
	}
	if err := s.store.AppendTurns(ctx, sessionID, turns...); err != nil {
		logger.WithError(log, err).Warn("Failed to save session turns", "session_id", sessionID)
		sessionErrorsTotal.WithLabelValues("save").Inc()
	}
}

// Reset forgets a session's stored history.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if s.store == nil || sessionID == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, sessionID)
}
