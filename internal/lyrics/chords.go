package lyrics

import (
	"regexp"
	"strings"
)

// Classifier thresholds. A line is a chord line when at least ChordThreshold
// of its tokens are chord-shaped, or at least WeakChordThreshold of them are
// and the line carries no lowercase prose.
const (
	ChordThreshold     = 0.6
	WeakChordThreshold = 0.4
)

var (
	chordTokenRegex = regexp.MustCompile(`^[A-G][#b]?(?:maj7|maj9|maj|m7|m9|m11|m|sus2|sus4|add9|dim7|dim|aug|\+|7)?(?:/[A-G][#b]?)?$`)
	proseRunRegex   = regexp.MustCompile(`[a-z]{2,}`)
)

// qualitySuffixes are removed before looking for prose, longest first
var qualitySuffixes = []string{"maj7", "maj9", "add9", "sus2", "sus4", "dim7", "maj", "m11", "m7", "m9", "dim", "aug"}

// Classification is the outcome of scoring one line
type Classification struct {
	Confidence float64
	Chord      bool
}

// IsChordToken reports whether a single token matches the chord grammar
func IsChordToken(token string) bool {
	return token == "N/A" || chordTokenRegex.MatchString(token)
}

// ChordConfidence returns the share of chord-shaped tokens in line
func ChordConfidence(line string) float64 {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0
	}
	chords := 0
	for _, token := range tokens {
		if IsChordToken(token) {
			chords++
		}
	}
	return float64(chords) / float64(len(tokens))
}

// ClassifyLine scores line and decides whether it is a chord line
func ClassifyLine(line string) Classification {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Classification{}
	}

	confidence := ChordConfidence(trimmed)
	result := Classification{Confidence: confidence}

	if strings.HasSuffix(trimmed, ":") {
		return result
	}

	switch {
	case confidence >= ChordThreshold:
		result.Chord = true
	case confidence >= WeakChordThreshold:
		result.Chord = !hasProse(trimmed)
	}
	return result
}

// IsChordLine reports whether line reads as a chord line
func IsChordLine(line string) bool {
	return ClassifyLine(line).Chord
}

func hasProse(line string) bool {
	stripped := line
	for _, suffix := range qualitySuffixes {
		stripped = strings.ReplaceAll(stripped, suffix, "")
	}
	return proseRunRegex.MatchString(stripped)
}
