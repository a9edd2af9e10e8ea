package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Clean(t *testing.T) {
	f := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "What the hell is going on?", "What the heck is going on?"},
		{"several", "This is damn crap!", "This is dang crud!"},
		{"uppercase", "DAMN that goblin!", "DANG that goblin!"},
		{"title case", "Hell no, the bridge is out", "Heck no, the bridge is out"},
		{"mixed case", "hELL", "hECK"},
		{"word boundaries", "A classical bass line", "A classical bass line"},
		{"compound wins", "You motherfucker!", "You mother-trucker!"},
		{"clean text untouched", "The dragon eyes you warily.", "The dragon eyes you warily."},
		{"punctuation", "\"Shit!\" the guard yells.", "\"Shoot!\" the guard yells."},
		{"menu line", "A. **Run like hell**, before the roof falls.", "A. **Run like heck**, before the roof falls."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Clean(tt.input))
		})
	}
}

func TestFilter_Contains(t *testing.T) {
	f := New()
	assert.True(t, f.Contains("well, damn"))
	assert.True(t, f.Contains("BULLSHIT"))
	assert.False(t, f.Contains("Hello adventurer"))
	assert.False(t, f.Contains("assassin"))
}

func TestAppliesTo(t *testing.T) {
	for _, r := range []string{"G", "pg", " PG13 ", "PG-13"} {
		assert.True(t, AppliesTo(r), r)
	}
	for _, r := range []string{"", "R", "NC-17", "mature"} {
		assert.False(t, AppliesTo(r), r)
	}
}
