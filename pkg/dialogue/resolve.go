package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

var (
	dcPattern = regexp.MustCompile(`\b(?:dc|difficulty\s*class)\s*(\d+)\b`)
	acPattern = regexp.MustCompile(`\bac\s*(\d+)\b`)
)

var attackCues = []string{"attack roll", "make an attack", "please roll attack"}

// ResolvePendingRoll recovers the most recent roll the DM asked for.
//
// history is chronological. Only the last HistoryWindow turns are read,
// newest first, and only assistant turns count. The scan stops at the first
// turn that names a roll kind. DC and AC are picked up from every turn read
// up to and including that one; a later match overwrites an earlier one.
func ResolvePendingRoll(history []chat.ChatMessage) PendingRoll {
	var pending PendingRoll

	start := max(len(history)-HistoryWindow, 0)
	for i := len(history) - 1; i >= start; i-- {
		turn := history[i]
		if turn.Role != chat.ChatRoleAgent {
			continue
		}
		content := strings.ToLower(turn.Content)

		if dc, ok := firstInt(dcPattern, content); ok {
			pending.DC = intPtr(dc)
		}
		if ac, ok := firstInt(acPattern, content); ok {
			pending.AC = intPtr(ac)
		}

		if kind, skill := classifyTurn(content); kind != RollKindNone {
			pending.Kind = kind
			pending.Skill = skill
			break
		}
	}

	return pending
}

// classifyTurn finds the roll kind requested by a single assistant turn.
// Initiative wins over every other cue in the same turn.
func classifyTurn(content string) (RollKind, Skill) {
	if strings.Contains(content, "initiative") {
		return RollKindInitiative, SkillNone
	}

	for _, s := range Skills {
		name := string(s)
		if strings.Contains(content, name+" check") ||
			strings.Contains(content, "roll "+name) ||
			strings.Contains(content, "roll for "+name) {
			return RollKindCheck, s
		}
	}

	for _, a := range SaveAbilities {
		if strings.Contains(content, string(a)+" saving throw") {
			return RollKindSave, a
		}
	}

	for _, cue := range attackCues {
		if strings.Contains(content, cue) {
			return RollKindAttack, SkillNone
		}
	}

	return RollKindNone, SkillNone
}

func firstInt(pattern *regexp.Regexp, text string) (int, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	v, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
