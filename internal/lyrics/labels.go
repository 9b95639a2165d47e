package lyrics

import (
	"regexp"
	"strconv"
	"strings"
)

// labelDecorations are stripped from both ends of a candidate label line
const labelDecorations = "*_~=`-"

// sectionNames maps a compacted lowercase section word to its canonical form
var sectionNames = map[string]string{
	"intro":     "Intro",
	"verse":     "Verse",
	"prechorus": "Pre-Chorus",
	"chorus":    "Chorus",
	"bridge":    "Bridge",
	"outro":     "Outro",
	"hook":      "Hook",
	"refrain":   "Refrain",
	"coda":      "Coda",
	"solo":      "Solo",
	"interlude": "Interlude",
	"breakdown": "Breakdown",
	"ending":    "Ending",
	"tag":       "Tag",
}

var (
	labelBodyRegex  = regexp.MustCompile(`^([A-Za-z]+(?:[\s-]*[A-Za-z]+)?)\s*(\d+)?$`)
	blankRunsRegex  = regexp.MustCompile(`\n{3,}`)
	lineEndingRegex = regexp.MustCompile(`\r\n?`)
)

// LabelNormalizer canonicalizes section label lines. It numbers bare
// "Verse" labels in the order it sees them, so use one value per pass.
type LabelNormalizer struct {
	verses int
}

// NewLabelNormalizer creates a normalizer with a fresh verse counter
func NewLabelNormalizer() *LabelNormalizer {
	return &LabelNormalizer{}
}

// Normalize returns the bracketed canonical label for line. Lines that are
// not section labels come back unchanged with ok == false.
func (n *LabelNormalizer) Normalize(line string) (string, bool) {
	body := stripLabelDecoration(line)
	if body == "" {
		return line, false
	}

	match := labelBodyRegex.FindStringSubmatch(body)
	if match == nil {
		return line, false
	}

	compact := strings.ToLower(strings.Join(strings.FieldsFunc(match[1], func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-'
	}), ""))
	name, ok := sectionNames[compact]
	if !ok {
		return line, false
	}

	number := match[2]
	if number == "" && name == "Verse" {
		n.verses++
		number = strconv.Itoa(n.verses)
	}
	if number != "" {
		return "[" + name + " " + number + "]", true
	}
	return "[" + name + "]", true
}

// NormalizeLabel normalizes a single line with its own verse counter
func NormalizeLabel(line string) (string, bool) {
	return NewLabelNormalizer().Normalize(line)
}

// IsSectionLabel reports whether line is a recognized section label
func IsSectionLabel(line string) bool {
	_, ok := NormalizeLabel(line)
	return ok
}

// NormalizeSectionLabels rewrites every recognized label line of text into
// its canonical form and leaves all other lines untouched.
func NormalizeSectionLabels(text string) string {
	if text == "" {
		return ""
	}
	normalizer := NewLabelNormalizer()
	lines := splitLines(text)
	for i, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if label, ok := normalizer.Normalize(raw); ok {
			lines[i] = label
		}
	}
	return strings.Join(lines, "\n")
}

// NormalizeFinalLyrics prepares text for saving or export: labels are
// canonical and sections are separated by a single blank line.
func NormalizeFinalLyrics(text string) string {
	withLabels := NormalizeSectionLabels(text)
	return strings.TrimSpace(blankRunsRegex.ReplaceAllString(withLabels, "\n\n"))
}

func stripLabelDecoration(line string) string {
	s := strings.TrimSpace(line)
	for {
		prev := s
		s = strings.Trim(s, labelDecorations+" \t")
		s = strings.TrimSpace(strings.TrimSuffix(s, ":"))
		if isEnclosed(s) {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
		if s == prev {
			return s
		}
	}
}

func isEnclosed(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case '[':
		return s[len(s)-1] == ']'
	case '(':
		return s[len(s)-1] == ')'
	case '{':
		return s[len(s)-1] == '}'
	}
	return false
}

func splitLines(text string) []string {
	return strings.Split(lineEndingRegex.ReplaceAllString(text, "\n"), "\n")
}
