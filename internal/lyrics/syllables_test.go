package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"cat", 1},
		{"the", 1},
		{"banana", 3},
		{"make", 1},
		{"jumped", 1},
		{"table", 2},
		{"yellow", 2},
		{"beautiful", 3},
		{"Banana", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CountSyllables(tt.word), tt.word)
	}
}

func TestLineSyllableCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, LineSyllableCount("the cat sat"))
	assert.Equal(t, 5, LineSyllableCount("  banana   yellow "))
	assert.Zero(t, LineSyllableCount("   "))
}

func TestMeasureTarget(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"4/4":   8,
		"3/4":   6,
		"2/2":   4,
		"6/8":   6,
		"12/8":  12,
		"5/8":   10,
		"":      8,
		"waltz": 8,
		"0/4":   8,
		"4/x":   8,
	}

	for sig, want := range tests {
		assert.Equal(t, want, MeasureTarget(sig), sig)
	}
}

func TestMeasure(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{Label: "[Verse 1]", Lines: []LineItem{{Lyric: "the cat sat"}, {Chords: "C"}, {Lyric: "banana"}}},
		{Label: "[Chorus]", Lines: []LineItem{{Lyric: "yellow yellow yellow yellow"}}},
	}

	got := Measure(sections, "3/4")
	assert.Equal(t, []LineMeasure{
		{Section: 0, Line: 0, Lyric: "the cat sat", Syllables: 3, Target: 6},
		{Section: 0, Line: 2, Lyric: "banana", Syllables: 3, Target: 6},
		{Section: 1, Line: 0, Lyric: "yellow yellow yellow yellow", Syllables: 8, Target: 6},
	}, got)
	assert.Equal(t, -3, got[0].Delta())
	assert.Equal(t, 2, got[2].Delta())
}
