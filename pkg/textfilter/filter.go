// Package textfilter softens profanity in generated narration for
// family-friendly tables.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// softer maps each filtered word to its table-friendly stand-in.
var softer = map[string]string{
	"fuck":         "fudge",
	"fucking":      "flipping",
	"shit":         "shoot",
	"damn":         "dang",
	"damned":       "danged",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "scoundrel",
	"crap":         "crud",
	"piss":         "ticked",
	"pissed":       "ticked",
	"dick":         "jerk",
	"prick":        "jerk",
	"cock":         "[censored]",
	"pussy":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"douchebag":    "jerk",
}

// Filter replaces profanity while keeping the casing of the original word.
// It is safe for concurrent use.
type Filter struct {
	pattern *regexp.Regexp
}

// New compiles the word list into a single case-insensitive pattern.
func New() *Filter {
	words := make([]string, 0, len(softer))
	for w := range softer {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so compound words win over their parts.
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	return &Filter{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`),
	}
}

// Clean returns text with every filtered word softened.
func (f *Filter) Clean(text string) string {
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return matchCase(match, softer[strings.ToLower(match)])
	})
}

// Contains reports whether text has any filtered word.
func (f *Filter) Contains(text string) bool {
	return f.pattern.MatchString(text)
}

func matchCase(original, replacement string) string {
	// Casers carry state, so each call gets its own.
	title := cases.Title(language.English)
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case title.String(strings.ToLower(original)) == original:
		return title.String(replacement)
	}

	// Mixed case: copy the pattern rune by rune.
	out := make([]rune, 0, utf8.RuneCountInString(replacement))
	orig := []rune(original)
	for _, r := range replacement {
		if n := len(out); n < len(orig) && unicode.IsUpper(orig[n]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// AppliesTo reports whether a content rating calls for filtering.
// Ratings G through PG-13 are filtered; R and anything else are not.
func AppliesTo(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
