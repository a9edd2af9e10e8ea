package dm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwebster45206/dm-engine/pkg/dialogue"
)

// Response paths.
const (
	pathRoll        = "roll"
	pathLLM         = "llm"
	pathHeuristic   = "heuristic"
	pathLLMFallback = "llm_fallback"
)

// Option sources.
const (
	sourceLLM      = "llm"
	sourceFallback = "fallback"
)

var (
	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_responses_total",
		Help: "DM responses by the path that produced them",
	}, []string{"path"})

	rollOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_roll_outcomes_total",
		Help: "Reported roll totals by roll kind and verdict",
	}, []string{"kind", "result"})

	optionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_options_total",
		Help: "Option menus served by source",
	}, []string{"source"})

	sessionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_session_errors_total",
		Help: "Session store failures by operation",
	}, []string{"op"})
)

func kindLabel(k dialogue.RollKind) string {
	if k == dialogue.RollKindNone {
		return "unknown"
	}
	return string(k)
}

func resultLabel(success *bool) string {
	switch {
	case success == nil:
		return "none"
	case *success:
		return "success"
	default:
		return "failure"
	}
}
