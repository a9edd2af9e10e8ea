package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOptions(t *testing.T) {
	filler := func(letter string) string { return letter + ". " + FillerOption }

	tests := []struct {
		name string
		raw  string
		want OptionMenu
	}{
		{
			name: "pads a short menu",
			raw:  "A. Sneak away\nB. Fight",
			want: OptionMenu{"A. **Sneak away**", "B. **Fight**", filler("C")},
		},
		{
			name: "splits head at first comma",
			raw:  "A. Sneak away, quietly, through the back\nB. Fight, with everything\nC. Talk",
			want: OptionMenu{
				"A. **Sneak away**, quietly, through the back",
				"B. **Fight**, with everything",
				"C. **Talk**",
			},
		},
		{
			name: "keeps existing bold",
			raw:  "A. **Hide**, behind the crates\nB. **Run**\nC. *Wait*, and see",
			want: OptionMenu{"A. **Hide**, behind the crates", "B. **Run**", "C. **Wait**, and see"},
		},
		{
			name: "drops chatter and unknown letters",
			raw:  "Here are your options:\nA. One\nnot an option\nD. Four\nB. Two\n\nC. Three\nHope that helps!",
			want: OptionMenu{"A. **One**", "B. **Two**", "C. **Three**"},
		},
		{
			name: "truncates extras",
			raw:  "A. a\nB. b\nC. c\nA. d",
			want: OptionMenu{"A. **a**", "B. **b**", "C. **c**"},
		},
		{
			name: "letters are positional",
			raw:  "B. First\nC. Second",
			want: OptionMenu{"A. **First**", "B. **Second**", filler("C")},
		},
		{
			name: "surrounding whitespace",
			raw:  "   A.   Spaced out  \r\n\tB.Tight",
			want: OptionMenu{"A. **Spaced out**", "B. **Tight**", filler("C")},
		},
		{
			name: "lowercase letters do not count",
			raw:  "a. lower\nb. case",
			want: OptionMenu{filler("A"), filler("B"), filler("C")},
		},
		{
			name: "empty input",
			raw:  "",
			want: OptionMenu{filler("A"), filler("B"), filler("C")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOptions(tt.raw))
		})
	}
}

func TestNormalizeOptions_Idempotent(t *testing.T) {
	inputs := []string{
		"A. Sneak away\nB. Fight",
		"A. Sneak away, quietly, through the back\nB. Fight, with everything\nC. Talk",
		"A. **Hide**, behind the crates\nB. **Run**\nC. *Wait*, and see",
		"garbage only",
		"",
		ExplorationMenu.String(),
	}

	for _, raw := range inputs {
		once := NormalizeOptions(raw)
		twice := NormalizeOptions(once.String())
		assert.Equal(t, once, twice, "input %q", raw)
	}
}
