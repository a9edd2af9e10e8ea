package dialogue

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	iRolledPattern = regexp.MustCompile(`\bi\s*rolled\s*(\d+)\b`)
	rolledPattern  = regexp.MustCompile(`rolled[^\d]*(\d+)\b`)
	totalPattern   = regexp.MustCompile(`\btotal\s*[:=]\s*(\d+)\b`)

	// Dice formulas such as 1d20, d20+3 or 2d6 + 1 - 1.
	diceNotationPattern = regexp.MustCompile(`\b\d*d\d+(?:\s*[+-]\s*\d+)*`)
)

// ExtractRollTotal pulls a reported roll total out of a player message.
// The second return is false when the player is not reporting a roll.
//
// Patterns are tried in order and the first one that yields an integer wins:
// "I rolled N", the first integer after "rolled" (dice formulas are skipped,
// so "Rolled 1d20+3 = 15" reports 15), then "total: N" / "total = N".
func ExtractRollTotal(message string) (int, bool) {
	m := strings.ToLower(message)

	candidates := []struct {
		pattern *regexp.Regexp
		text    string
	}{
		{iRolledPattern, m},
		{rolledPattern, diceNotationPattern.ReplaceAllString(m, " ")},
		{totalPattern, m},
	}

	for _, c := range candidates {
		match := c.pattern.FindStringSubmatch(c.text)
		if match == nil {
			continue
		}
		total, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return total, true
	}
	return 0, false
}
