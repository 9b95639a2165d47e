package lyrics

import (
	"regexp"
	"strconv"
	"strings"
)

// defaultMeasureTarget is the per-line syllable target for 4/4
const defaultMeasureTarget = 8

var (
	silentEndingRegex = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	vowelRunRegex     = regexp.MustCompile(`[aeiouy]+`)
)

// CountSyllables estimates the syllables in one word. It is a spelling
// heuristic with no dictionary behind it.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	if len([]rune(w)) <= 3 {
		if w == "" {
			return 0
		}
		return 1
	}
	w = silentEndingRegex.ReplaceAllString(w, "")
	w = strings.TrimPrefix(w, "y")
	return len(vowelRunRegex.FindAllString(w, -1))
}

// LineSyllableCount sums CountSyllables over the words of line
func LineSyllableCount(line string) int {
	total := 0
	for _, word := range strings.Fields(line) {
		total += CountSyllables(word)
	}
	return total
}

// MeasureTarget derives a per-line syllable target from a time signature:
// two syllables per beat in simple meters, one per eighth in compound ones.
func MeasureTarget(timeSignature string) int {
	numerator, denominator, ok := strings.Cut(strings.TrimSpace(timeSignature), "/")
	if !ok {
		return defaultMeasureTarget
	}
	beats, err := strconv.Atoi(strings.TrimSpace(numerator))
	if err != nil || beats <= 0 {
		return defaultMeasureTarget
	}
	unit, err := strconv.Atoi(strings.TrimSpace(denominator))
	if err != nil || unit <= 0 {
		return defaultMeasureTarget
	}
	if unit == 8 && beats%3 == 0 {
		return beats
	}
	return beats * 2
}

// LineMeasure is the measure-mode reading of one line
type LineMeasure struct {
	Section   int    `json:"section"`
	Line      int    `json:"line"`
	Lyric     string `json:"lyric"`
	Syllables int    `json:"syllables"`
	Target    int    `json:"target"`
}

// Delta is the difference between the estimate and the target
func (m LineMeasure) Delta() int {
	return m.Syllables - m.Target
}

// Measure counts syllables for every non-blank lyric line against the
// target implied by timeSignature.
func Measure(sections []Section, timeSignature string) []LineMeasure {
	target := MeasureTarget(timeSignature)
	var out []LineMeasure
	for si, section := range sections {
		for li, line := range section.Lines {
			if strings.TrimSpace(line.Lyric) == "" {
				continue
			}
			out = append(out, LineMeasure{
				Section:   si,
				Line:      li,
				Lyric:     line.Lyric,
				Syllables: LineSyllableCount(line.Lyric),
				Target:    target,
			})
		}
	}
	return out
}
