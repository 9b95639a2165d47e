package studio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

// RhymeLine is one lyric line that shares a rhyme class with another
type RhymeLine struct {
	Position string
	Section  string
	Lyric    string
	Group    string
}

// Rhymes returns the rhyming lines of the chat's song grouped by class, in
// document order.
func (s *Studio) Rhymes(ctx context.Context, chatID int64) ([]RhymeLine, error) {
	var out []RhymeLine
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		out = FindRhymes(doc.Sections)
		return nil
	})
	return out, err
}

// FindRhymes lists the lines of sections that share a rhyme class, grouped
// by class in order of first appearance.
func FindRhymes(sections []lyrics.Section) []RhymeLine {
	groups := lyrics.RhymeGroups(sections)
	var out []RhymeLine
	for si, section := range sections {
		for li, line := range section.Lines {
			pos := lyrics.LinePosition(si, li)
			group, ok := groups[pos]
			if !ok {
				continue
			}
			out = append(out, RhymeLine{Position: pos, Section: section.Label, Lyric: line.Lyric, Group: group})
		}
	}
	first := make(map[string]int)
	for i, l := range out {
		if _, ok := first[l.Group]; !ok {
			first[l.Group] = i
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return first[out[i].Group] < first[out[j].Group] })
	return out
}

// FormatRhymes renders rhyme lines as a plain-text report
func FormatRhymes(lines []RhymeLine) string {
	if len(lines) == 0 {
		return "No rhymes found yet."
	}
	var b strings.Builder
	current := ""
	for _, l := range lines {
		if l.Group != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = l.Group
			fmt.Fprintf(&b, "%s:\n", l.Group)
		}
		fmt.Fprintf(&b, "  %s %s\n", l.Section, strings.TrimSpace(l.Lyric))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Measure counts syllables per lyric line against the song's meter, or the
// configured default meter when the song has none.
func (s *Studio) Measure(ctx context.Context, chatID int64) ([]lyrics.LineMeasure, error) {
	var out []lyrics.LineMeasure
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		ts := doc.Details.TimeSignature
		if strings.TrimSpace(ts) == "" {
			ts = s.timeSignature
		}
		out = lyrics.Measure(doc.Sections, ts)
		return nil
	})
	return out, err
}

// FormatMeasure renders measure readings, marking lines off target
func FormatMeasure(measures []lyrics.LineMeasure) string {
	if len(measures) == 0 {
		return "No lyric lines to measure."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Target: %d syllables per line\n", measures[0].Target)
	for _, m := range measures {
		mark := "✓"
		if d := m.Delta(); d > 0 {
			mark = fmt.Sprintf("+%d", d)
		} else if d < 0 {
			mark = fmt.Sprintf("%d", d)
		}
		fmt.Fprintf(&b, "%2d  %-4s %s\n", m.Syllables, mark, strings.TrimSpace(m.Lyric))
	}
	return strings.TrimRight(b.String(), "\n")
}
