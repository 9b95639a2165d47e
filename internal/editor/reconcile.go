package editor

import (
	"fmt"
	"strings"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Mode selects how generated text is merged into a document
type Mode int

const (
	ModeReplace Mode = iota
	ModeContinue
	ModeChordOverlay
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeContinue:
		return "continue"
	case ModeChordOverlay:
		return "chord-overlay"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Reconcile merges already-parsed sections into the document. It returns
// false without touching the document or its history when parsed is empty.
func (d *Document) Reconcile(mode Mode, parsed []lyrics.Section) bool {
	if len(parsed) == 0 {
		return false
	}

	d.snapshot()
	switch mode {
	case ModeContinue:
		d.Sections = append(d.Sections, d.assignIDs(parsed)...)
	case ModeChordOverlay:
		d.Sections = OverlayChords(d.Sections, parsed)
	default:
		d.Sections = d.assignIDs(parsed)
	}
	return true
}

// OverlayChords returns a copy of existing where every line keeps its lyric
// and takes the chords of the same line in the matching parsed section. A
// parsed section matches on label, ignoring case; sections without a match
// use the first parsed section.
func OverlayChords(existing, parsed []lyrics.Section) []lyrics.Section {
	out := lyrics.CloneSections(existing)
	if len(parsed) == 0 {
		return out
	}

	for i := range out {
		source := parsed[0]
		for _, p := range parsed {
			if strings.EqualFold(strings.TrimSpace(p.Label), strings.TrimSpace(out[i].Label)) {
				source = p
				break
			}
		}
		chords := source.Chords()
		for li := range out[i].Lines {
			out[i].Lines[li].Chords = ""
			if li < len(chords) {
				out[i].Lines[li].Chords = chords[li]
			}
		}
	}
	return out
}
