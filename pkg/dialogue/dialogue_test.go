package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// followUp runs the roll follow-up path the way the DM service does.
func followUp(t *testing.T, history []chat.ChatMessage, message string) (RollOutcome, OptionMenu) {
	t.Helper()
	total, ok := ExtractRollTotal(message)
	require.True(t, ok, "expected %q to report a roll", message)

	pending := ResolvePendingRoll(history)
	outcome := EvaluateOutcome(pending, total)
	return outcome, GenerateOptions(pending.Kind, pending.Skill, outcome.Success)
}

func TestFollowUp_StealthSuccess(t *testing.T) {
	history := []chat.ChatMessage{dm("Make a Stealth check, DC 14.")}

	outcome, menu := followUp(t, history, "I rolled 16")

	assert.Equal(t, "Your stealth check is 16 (success).", outcome.Summary)
	require.NotNil(t, outcome.Success)
	assert.True(t, *outcome.Success)
	assert.Equal(t, GenerateOptions(RollKindCheck, SkillStealth, boolPtr(true)), menu)
}

func TestFollowUp_StealthFailure(t *testing.T) {
	history := []chat.ChatMessage{dm("Make a Stealth check, DC 14.")}

	outcome, menu := followUp(t, history, "I rolled 10")

	assert.Equal(t, "Your stealth check is 10 (failure).", outcome.Summary)
	require.NotNil(t, outcome.Success)
	assert.False(t, *outcome.Success)
	assert.Equal(t, "A. **Freeze and conceal**, minimize movement and sound.", menu[0])
}

func TestFollowUp_AttackAgainstStatedAC(t *testing.T) {
	history := []chat.ChatMessage{
		dm("The ogre looms over you."),
		player("I swing my axe."),
		dm("Make an attack roll against its AC 11."),
	}

	outcome, menu := followUp(t, history, "Rolled 1d20+5 = 12")

	assert.Equal(t, "Your attack roll is 12 (hit).", outcome.Summary)
	assert.Equal(t, "A. **Press the attack**, keep the pressure on your target.", menu[0])
}

func TestFollowUp_NothingPending(t *testing.T) {
	history := []chat.ChatMessage{dm("The road stretches north.")}

	outcome, menu := followUp(t, history, "total: 14")

	assert.Equal(t, "Roll total recorded: 14.", outcome.Summary)
	assert.Nil(t, outcome.Success)
	assert.Equal(t, ExplorationMenu, menu)
}
