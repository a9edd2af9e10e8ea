package dialogue

import "fmt"

// RollOutcome is the verdict on a reported roll. Success is nil when the
// kind has nothing to compare against.
type RollOutcome struct {
	Total   int
	Success *bool
	Summary string
}

// EvaluateOutcome compares a reported total with the pending roll's target
// and writes a one-line summary.
func EvaluateOutcome(p PendingRoll, total int) RollOutcome {
	out := RollOutcome{Total: total}

	switch p.Kind {
	case RollKindInitiative:
		out.Summary = fmt.Sprintf("Initiative noted: %d.", total)

	case RollKindAttack:
		ac, _ := p.EffectiveAC()
		hit := total >= ac
		out.Success = boolPtr(hit)
		out.Summary = fmt.Sprintf("Your attack roll is %d %s.", total, verdict(hit, "(hit)", "(miss)"))

	case RollKindSave:
		dc, _ := p.EffectiveDC()
		ok := total >= dc
		out.Success = boolPtr(ok)
		out.Summary = fmt.Sprintf("Your %s throw is %d %s.", nameOr(p.Skill, "saving"), total, verdict(ok, "(success)", "(failure)"))

	case RollKindCheck:
		dc, _ := p.EffectiveDC()
		ok := total >= dc
		out.Success = boolPtr(ok)
		out.Summary = fmt.Sprintf("Your %s check is %d %s.", nameOr(p.Skill, "ability"), total, verdict(ok, "(success)", "(failure)"))

	default:
		out.Summary = fmt.Sprintf("Roll total recorded: %d.", total)
	}

	return out
}

func verdict(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func nameOr(s Skill, fallback string) string {
	if s == SkillNone {
		return fallback
	}
	return string(s)
}
