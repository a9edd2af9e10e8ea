package dialogue

import (
	"fmt"
	"regexp"
	"strings"
)

// FillerOption is the action used to pad a short menu.
const FillerOption = "**Explore another angle**, adapt your approach to the situation."

var optionLinePattern = regexp.MustCompile(`^([A-C])\.\s*(.*)$`)

var optionLetters = [3]string{"A", "B", "C"}

// NormalizeOptions coerces free-form option text into a canonical menu.
//
// Lines that do not start with "A.", "B." or "C." are dropped. Each kept
// body is split at its first comma into a bold head and a tail. Options are
// lettered by position, extras are cut and a short menu is padded with
// FillerOption. Applying it to its own output changes nothing.
func NormalizeOptions(raw string) OptionMenu {
	var menu OptionMenu
	n := 0

	for _, line := range strings.Split(raw, "\n") {
		if n == len(menu) {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := optionLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		menu[n] = formatOption(optionLetters[n], strings.TrimSpace(match[2]))
		n++
	}

	for ; n < len(menu); n++ {
		menu[n] = optionLetters[n] + ". " + FillerOption
	}
	return menu
}

func formatOption(letter, body string) string {
	if head, tail, ok := strings.Cut(body, ","); ok {
		return fmt.Sprintf("%s. **%s**, %s", letter, unbold(head), strings.TrimSpace(tail))
	}
	return fmt.Sprintf("%s. **%s**", letter, unbold(body))
}

// unbold strips surrounding markdown bold so already-formatted heads are not
// wrapped twice.
func unbold(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}
