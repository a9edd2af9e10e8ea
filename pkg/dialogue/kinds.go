// Package dialogue reconstructs dice-roll context from free-form conversation
// and picks the DM's next move. Every function here is pure and safe for
// concurrent use.
package dialogue

// HistoryWindow is the number of trailing turns ever inspected.
const HistoryWindow = 8

// Default targets, injected only when a target is needed and none was stated.
const (
	DefaultCheckDC  = 12
	DefaultSaveDC   = 13
	DefaultAttackAC = 13
)

// RollKind identifies what a roll is for.
type RollKind string

const (
	RollKindNone       RollKind = ""
	RollKindCheck      RollKind = "check"
	RollKindSave       RollKind = "save"
	RollKindAttack     RollKind = "attack"
	RollKindInitiative RollKind = "initiative"
)

// Label is the human-readable name of the kind.
func (k RollKind) Label() string {
	switch k {
	case RollKindCheck:
		return "Check"
	case RollKindSave:
		return "Saving Throw"
	case RollKindAttack:
		return "Attack"
	case RollKindInitiative:
		return "Initiative"
	default:
		return "Roll"
	}
}

// Skill is a named skill or save ability. The zero value means unspecified.
type Skill string

const (
	SkillNone           Skill = ""
	SkillStealth        Skill = "stealth"
	SkillPerception     Skill = "perception"
	SkillInvestigation  Skill = "investigation"
	SkillAthletics      Skill = "athletics"
	SkillAcrobatics     Skill = "acrobatics"
	SkillInsight        Skill = "insight"
	SkillPersuasion     Skill = "persuasion"
	SkillDeception      Skill = "deception"
	SkillIntimidation   Skill = "intimidation"
	SkillSurvival       Skill = "survival"
	SkillArcana         Skill = "arcana"
	SkillHistory        Skill = "history"
	SkillReligion       Skill = "religion"
	SkillNature         Skill = "nature"
	SkillMedicine       Skill = "medicine"
	SkillPerformance    Skill = "performance"
	SkillSleightOfHand  Skill = "sleight of hand"
	SkillAnimalHandling Skill = "animal handling"

	AbilityStrength     Skill = "strength"
	AbilityDexterity    Skill = "dexterity"
	AbilityConstitution Skill = "constitution"
	AbilityIntelligence Skill = "intelligence"
	AbilityWisdom       Skill = "wisdom"
	AbilityCharisma     Skill = "charisma"
)

// Skills lists the skill vocabulary in match priority order.
var Skills = []Skill{
	SkillStealth, SkillPerception, SkillInvestigation, SkillAthletics, SkillAcrobatics,
	SkillInsight, SkillPersuasion, SkillDeception, SkillIntimidation, SkillSurvival,
	SkillArcana, SkillHistory, SkillReligion, SkillNature, SkillMedicine, SkillPerformance,
	SkillSleightOfHand, SkillAnimalHandling,
}

// SaveAbilities lists the saving throw abilities in match priority order.
var SaveAbilities = []Skill{
	AbilityStrength, AbilityDexterity, AbilityConstitution,
	AbilityIntelligence, AbilityWisdom, AbilityCharisma,
}

// PendingRoll is the roll the DM most recently asked for, as recovered from
// history. DC and AC are nil when the conversation never stated them.
type PendingRoll struct {
	Kind  RollKind
	Skill Skill
	DC    *int
	AC    *int
}

// EffectiveDC returns the stated DC or the default for the kind.
// ok is false for kinds that are not compared against a DC.
func (p PendingRoll) EffectiveDC() (dc int, ok bool) {
	switch p.Kind {
	case RollKindCheck:
		return valueOr(p.DC, DefaultCheckDC), true
	case RollKindSave:
		return valueOr(p.DC, DefaultSaveDC), true
	default:
		return 0, false
	}
}

// EffectiveAC returns the stated AC or the default for attacks.
func (p PendingRoll) EffectiveAC() (ac int, ok bool) {
	if p.Kind != RollKindAttack {
		return 0, false
	}
	return valueOr(p.AC, DefaultAttackAC), true
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
