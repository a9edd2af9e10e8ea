package dialogue

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// Dice formulas suggested with each request.
const (
	InitiativeFormula = "1d20+2"
	AttackFormula     = "1d20+5"
	CheckFormula      = "1d20+3"
	SaveFormula       = "1d20+2"
)

// NarrativePrompt is returned when the player's action needs no roll.
const NarrativePrompt = "The scene awaits your action. Describe what you do next, and I'll respond with clear consequences and options."

// NextStepPrompt separates a verdict or narration from the option menu.
const NextStepPrompt = "What do you do next?"

type skillSynonyms struct {
	skill Skill
	words []string
}

// synonyms is checked in order; the first skill with a matching word wins.
var synonyms = []skillSynonyms{
	{SkillStealth, []string{"sneak", "sneaking", "sneakily", "quiet", "quietly", "hide", "hidden", "shadows", "creep", "silently", "tiptoe"}},
	{SkillDeception, []string{"diversion", "distract", "distracting", "bluff", "mislead", "decoy"}},
	{SkillAthletics, []string{"throw", "toss", "hurl", "shove", "lift", "climb", "jump", "grapple"}},
	{SkillAcrobatics, []string{"tumble", "flip", "balance", "dodge", "roll away"}},
	{SkillPersuasion, []string{"persuade", "convince", "appeal", "negotiate", "bargain", "charm"}},
	{SkillIntimidation, []string{"intimidate", "threaten", "menace", "coerce", "scare"}},
	{SkillInvestigation, []string{"search", "examine", "inspect", "analyze", "study", "look over"}},
	{SkillPerception, []string{"look", "listen", "scan", "spot", "notice", "observe", "hear"}},
	{SkillSleightOfHand, []string{"pickpocket", "palm", "conceal", "snatch", "nimble fingers"}},
	{SkillSurvival, []string{"track", "forage", "navigate", "trail"}},
}

var titleCaser = cases.Title(language.English)

// ClassifyNewRequest decides which rolls, if any, a fresh player action
// calls for. Requests of different kinds may coexist; at most one check is
// produced, plus a save whenever the message says "save".
func ClassifyNewRequest(message string) []chat.RollRequest {
	m := strings.ToLower(message)
	var requests []chat.RollRequest

	var dc *int
	if v, ok := firstInt(dcPattern, m); ok {
		dc = intPtr(v)
	}

	if strings.Contains(m, "initiative") {
		requests = append(requests, chat.RollRequest{
			Type:    string(RollKindInitiative),
			Formula: InitiativeFormula,
			Purpose: "Roll initiative",
		})
	}
	if strings.Contains(m, "attack") {
		requests = append(requests, chat.RollRequest{
			Type:    string(RollKindAttack),
			Formula: AttackFormula,
			Purpose: "Attack roll",
			AC:      intPtr(DefaultAttackAC),
		})
	}

	if skill := checkSkill(m); skill != SkillNone {
		requests = append(requests, chat.RollRequest{
			Type:    string(RollKindCheck),
			Formula: CheckFormula,
			Purpose: titleCaser.String(string(skill)) + " check",
			DC:      copyInt(dc),
		})
	} else if strings.Contains(m, "check") {
		requests = append(requests, chat.RollRequest{
			Type:    string(RollKindCheck),
			Formula: CheckFormula,
			Purpose: "Ability check",
			DC:      copyInt(dc),
		})
	}

	// TODO: "save" also matches "saved" and "savage"; decide whether the
	// save request should require the whole word.
	if strings.Contains(m, "save") {
		requests = append(requests, chat.RollRequest{
			Type:    string(RollKindSave),
			Formula: SaveFormula,
			Purpose: "Saving throw",
			DC:      copyInt(dc),
		})
	}

	return requests
}

// checkSkill returns the skill a check should test. A skill named outright
// beats one inferred from synonyms.
func checkSkill(m string) Skill {
	for _, s := range Skills {
		if strings.Contains(m, string(s)) {
			return s
		}
	}
	for _, entry := range synonyms {
		for _, w := range entry.words {
			if strings.Contains(m, w) {
				return entry.skill
			}
		}
	}
	return SkillNone
}

// RenderRollPrompt asks for the first request's roll, naming its target.
// It returns "" when there is nothing to ask for.
func RenderRollPrompt(requests []chat.RollRequest) string {
	if len(requests) == 0 {
		return ""
	}
	rr := requests[0]

	purpose := rr.Purpose
	if purpose == "" {
		purpose = RollKind(rr.Type).Label()
	}

	target := ""
	switch {
	case rr.DC != nil:
		target = fmt.Sprintf(" (DC %d)", *rr.DC)
	case rr.AC != nil:
		target = fmt.Sprintf(" (AC %d)", *rr.AC)
	}

	return fmt.Sprintf("Please roll %s%s.", purpose, target)
}

// RenderNarrative is the reply for an action that needs no roll. With
// inline set, the exploration menu is appended.
func RenderNarrative(inline bool) string {
	if !inline {
		return NarrativePrompt
	}
	return NarrativePrompt + "\n" + ExplorationMenu.String()
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return intPtr(*v)
}
