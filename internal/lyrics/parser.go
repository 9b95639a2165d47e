package lyrics

import (
	"strconv"
	"strings"
)

// Parse turns free-form text into ordered sections.
//
// The walk is greedy with one line of lookahead: a chord line takes the
// following line as its lyric unless that line is a label or another chord
// line, in which case the chord line stands alone with an empty lyric. Blank
// lines inside a section are kept as empty lines; blank lines at the edges of
// a section are dropped. Parse never fails: text without any content yields
// a single default section.
func Parse(text string) []Section {
	p := &parser{labels: NewLabelNormalizer()}
	lines := splitLines(text)

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			p.pendingBlanks++
			continue
		}

		if label, ok := p.sectionLabel(trimmed); ok {
			p.closeSection()
			p.current = &Section{Label: label}
			continue
		}

		if IsChordLine(trimmed) {
			item := LineItem{Chords: strings.TrimRight(lines[i], " \t")}
			if i+1 < len(lines) && pairsWithChordLine(lines[i+1]) {
				item.Lyric = strings.TrimSpace(lines[i+1])
				i++
			}
			p.emit(item)
			continue
		}

		p.emit(LineItem{Lyric: trimmed})
	}
	p.closeSection()

	if len(p.sections) == 0 {
		return []Section{{ID: "1", Label: DefaultLabel, Lines: []LineItem{{}}}}
	}
	for i := range p.sections {
		p.sections[i].ID = strconv.Itoa(i + 1)
	}
	return p.sections
}

type parser struct {
	labels        *LabelNormalizer
	sections      []Section
	current       *Section
	pendingBlanks int
}

func (p *parser) sectionLabel(trimmed string) (string, bool) {
	if label, ok := p.labels.Normalize(trimmed); ok {
		return label, true
	}
	return customLabel(trimmed)
}

func (p *parser) emit(item LineItem) {
	if p.current == nil {
		p.current = &Section{Label: DefaultLabel}
	}
	if len(p.current.Lines) > 0 {
		for ; p.pendingBlanks > 0; p.pendingBlanks-- {
			p.current.Lines = append(p.current.Lines, LineItem{})
		}
	}
	p.pendingBlanks = 0
	p.current.Lines = append(p.current.Lines, item)
}

func (p *parser) closeSection() {
	p.pendingBlanks = 0
	if p.current == nil {
		return
	}
	if len(p.current.Lines) == 0 {
		p.current.Lines = []LineItem{{}}
	}
	p.sections = append(p.sections, *p.current)
	p.current = nil
}

// pairsWithChordLine reports whether next may serve as the lyric under a
// chord line. The label check uses a throwaway normalizer so the verse
// counter is not advanced by lookahead.
func pairsWithChordLine(next string) bool {
	trimmed := strings.TrimSpace(next)
	if trimmed == "" {
		return true
	}
	if IsSectionLabel(trimmed) {
		return false
	}
	if _, ok := customLabel(trimmed); ok {
		return false
	}
	return !IsChordLine(trimmed)
}

// customLabel accepts a whole bracketed line outside the known vocabulary,
// such as "[Spoken Word]", so renamed sections survive a round trip.
func customLabel(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return "", false
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" || strings.ContainsAny(inner, "[]") || IsChordLine(inner) {
		return "", false
	}
	return trimmed, true
}
