package prompts

import "strings"

// NarratorSystemPrompt steers free-form DM narration.
const NarratorSystemPrompt = "You are a D&D 5e Dungeon Master. Keep responses concise (<= 3 short paragraphs). " +
	"Use direct quoted NPC dialogue. End with 2-3 lettered options (A./B./C.)."

// CombatOptionsSystemPrompt asks for three tactical options during a battle.
const CombatOptionsSystemPrompt = "You craft exactly three tactical combat options for a D&D 5e battle. " +
	"Output must be ONLY three lines, each starting with a capital letter and period (A./B./C.), " +
	"formatted as: A. **Action Name**, brief tactical description. " +
	"Focus on: attacking specific targets, defensive maneuvers, tactical positioning, " +
	"using abilities/items/spells, helping allies, or strategic retreat. " +
	"Ground options in combat state, initiative order, and last action taken."

// SceneOptionsSystemPrompt asks for three story options outside combat.
const SceneOptionsSystemPrompt = "You craft exactly three concise, story-appropriate action options for a D&D scene. " +
	"Output must be ONLY three lines, each starting with a capital letter and period (A./B./C.), " +
	"formatted as: A. **Action Name**, brief description. Avoid dice prompts; avoid meta. " +
	"Vary approaches (social/stealth/combat/investigation) and ground in provided context."

// OptionsFinalInstruction closes every options prompt.
const OptionsFinalInstruction = "Return only the three lettered lines."

// Markers a client writes into the state section while a fight is running.
var combatMarkers = []string{"COMBAT: ACTIVE", "COMBAT STATE - ACTIVE"}

// IsCombat reports whether the state section says a fight is in progress.
func IsCombat(stateSection string) bool {
	for _, marker := range combatMarkers {
		if strings.Contains(stateSection, marker) {
			return true
		}
	}
	return false
}

// OptionsSystemPrompt picks the options prompt for the current state.
func OptionsSystemPrompt(stateSection string) string {
	if IsCombat(stateSection) {
		return CombatOptionsSystemPrompt
	}
	return SceneOptionsSystemPrompt
}
