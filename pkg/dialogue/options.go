package dialogue

import "strings"

// OptionMenu is exactly three lettered suggestions, A through C.
type OptionMenu [3]string

// Lines returns the options as a slice.
func (m OptionMenu) Lines() []string {
	return m[:]
}

// String joins the options one per line.
func (m OptionMenu) String() string {
	return strings.Join(m[:], "\n")
}

type skillGroup int

const (
	groupGeneric skillGroup = iota
	groupSocial
	groupStealth
	groupPhysical
)

func groupOf(s Skill) skillGroup {
	switch s {
	case SkillDeception, SkillPersuasion, SkillIntimidation:
		return groupSocial
	case SkillStealth:
		return groupStealth
	case SkillAthletics, SkillAcrobatics:
		return groupPhysical
	default:
		return groupGeneric
	}
}

type menuKey struct {
	kind    RollKind
	group   skillGroup
	success bool
}

// ExplorationMenu is the catch-all menu for unclassified situations.
var ExplorationMenu = OptionMenu{
	"A. **Approach cautiously**, gather more information before acting.",
	"B. **Create a distraction**, change the situation in your favor.",
	"C. **Withdraw and reassess**, plan a better approach.",
}

var initiativeMenu = OptionMenu{
	"A. **Act decisively**, take the first aggressive move.",
	"B. **Hold and observe**, wait for an opening.",
	"C. **Reposition**, move to advantageous terrain.",
}

// menus is keyed by (kind, group, success). Attack and save entries only
// use groupGeneric; initiative and unclassified rolls are handled before lookup.
var menus = map[menuKey]OptionMenu{
	{RollKindCheck, groupSocial, true}: {
		"A. **Slip away under the distraction**, moving quickly while their attention is elsewhere.",
		"B. **Reposition for advantage**, circling behind cover to set up your next move.",
		"C. **Press the bluff**, doubling down to steer them where you want.",
	},
	{RollKindCheck, groupSocial, false}: {
		"A. **Duck into cover**, using shadows and obstacles to break line of sight.",
		"B. **Change tactics**, shift to stealth or speed instead of misdirection.",
		"C. **Create a louder diversion**, throw debris or shout from another angle.",
	},
	{RollKindCheck, groupStealth, true}: {
		"A. **Shadow the pursuers**, tailing them to learn their route.",
		"B. **Slip past**, bypassing the danger to reach your objective.",
		"C. **Set an ambush**, choose a chokepoint and prepare.",
	},
	{RollKindCheck, groupStealth, false}: {
		"A. **Freeze and conceal**, minimize movement and sound.",
		"B. **Break line of sight**, dash to sturdier cover immediately.",
		"C. **Create a cover noise**, toss something to mask your movement.",
	},
	{RollKindCheck, groupPhysical, true}: {
		"A. **Scale the terrain**, gaining a high vantage to escape or observe.",
		"B. **Dash through obstacles**, using momentum to widen the gap.",
		"C. **Shove or trip**, hinder a pursuer to buy time.",
	},
	{RollKindCheck, groupPhysical, false}: {
		"A. **Retreat to safer footing**, then try a different approach.",
		"B. **Use the environment**, topple a crate or door to block pursuit.",
		"C. **Switch tactics**, avoid risky stunts and move cautiously.",
	},
	{RollKindCheck, groupGeneric, true}: {
		"A. **Capitalize immediately**, act before the window closes.",
		"B. **Gather more information**, probe for extra clues.",
		"C. **Set up allies**, coordinate for a stronger follow-through.",
	},
	{RollKindCheck, groupGeneric, false}: {
		"A. **Try a different angle**, apply another skill or approach.",
		"B. **Leverage the environment**, find cover or tools nearby.",
		"C. **Withdraw briefly**, reassess and plan your next move.",
	},
	{RollKindAttack, groupGeneric, true}: {
		"A. **Press the attack**, keep the pressure on your target.",
		"B. **Grapple or shove**, control their movement to gain advantage.",
		"C. **Withdraw to cover**, reposition before their counterattack.",
	},
	{RollKindAttack, groupGeneric, false}: {
		"A. **Feint then strike**, change timing to throw them off.",
		"B. **Disengage and reposition**, set up a better line or range.",
		"C. **Switch tactics**, try a different target or approach.",
	},
	{RollKindSave, groupGeneric, true}: {
		"A. **Push the advantage**, advance while the danger subsides.",
		"B. **Aid an ally**, help someone still in peril.",
		"C. **Secure a safer position**, reduce future risk.",
	},
	{RollKindSave, groupGeneric, false}: {
		"A. **Seek cover immediately**, minimize ongoing effects.",
		"B. **Use a resource**, potion or feature to mitigate harm.",
		"C. **Call for aid**, coordinate with allies.",
	},
}

// GenerateOptions picks the menu for a roll kind, skill and verdict.
// A nil success selects the failure menu. Every input maps to some menu.
func GenerateOptions(kind RollKind, skill Skill, success *bool) OptionMenu {
	key := menuKey{kind: kind, success: success != nil && *success}

	switch kind {
	case RollKindInitiative:
		return initiativeMenu
	case RollKindCheck:
		key.group = groupOf(skill)
	case RollKindAttack, RollKindSave:
		key.group = groupGeneric
	default:
		return ExplorationMenu
	}

	if menu, ok := menus[key]; ok {
		return menu
	}
	return ExplorationMenu
}
