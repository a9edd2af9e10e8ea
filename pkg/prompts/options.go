package prompts

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// Character budgets for each part of an options prompt.
const (
	stateBudget   = 1200
	historyBudget = 1200
	lastDMBudget  = 1400
	playerBudget  = 400
)

const ellipsis = "…"

// BuildOptionsMessages builds the prompt asking for three next actions.
// history overrides req.History when the caller loaded it from a session.
func BuildOptionsMessages(req *chat.OptionsRequest, history []chat.ChatMessage) []chat.ChatMessage {
	var bits []string

	if req.StateSection != "" {
		bits = append(bits, Shorten("STATE\n"+req.StateSection, stateBudget))
	}
	if req.LastRoll != nil {
		bits = append(bits, LastRollSummary(req.LastRoll))
	}
	if recent := FormatHistory(history, DefaultHistoryLimit); recent != "" {
		bits = append(bits, "RECENT:\n"+Shorten(recent, historyBudget))
	}
	bits = append(bits, "LAST_DM:\n"+Shorten(req.LastDMText, lastDMBudget))
	if req.PlayerMessage != "" {
		bits = append(bits, "PLAYER:\n"+Shorten(req.PlayerMessage, playerBudget))
	}

	user := strings.Join(bits, "\n\n") + "\n\n" + OptionsFinalInstruction

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: OptionsSystemPrompt(req.StateSection)},
		{Role: chat.ChatRoleUser, Content: user},
	}
}

// LastRollSummary renders a resolved roll as one line of prompt context.
func LastRollSummary(lr *chat.LastRoll) string {
	dc := ""
	if lr.DC != nil {
		dc = fmt.Sprint(*lr.DC)
	}
	s := fmt.Sprintf("Last roll: %s %s %d vs DC %s", lr.Kind, lr.Skill, lr.Result, dc)
	if lr.AC != nil && *lr.AC != 0 {
		s += fmt.Sprintf(" vs AC %d", *lr.AC)
	}
	return s
}

// Shorten collapses runs of whitespace to single spaces and truncates the
// result to width columns, ending with an ellipsis when anything was cut.
func Shorten(s string, width int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if width <= 0 || len([]rune(collapsed)) <= width {
		return collapsed
	}
	return truncate.StringWithTail(collapsed, uint(width), ellipsis)
}
