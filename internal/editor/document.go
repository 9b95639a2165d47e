package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// NewSectionLabel is used by AddSection when no label is given
const NewSectionLabel = "[New Section]"

// Document is one song being edited. It owns the section list, the undo
// history and the id sequence; every mutation records a snapshot first.
// A Document is not safe for concurrent use.
type Document struct {
	Title    string
	Details  lyrics.Details
	Sections []lyrics.Section

	history *History
	nextID  int
}

// New returns a document with an empty verse and chorus
func New() *Document {
	d := &Document{history: NewHistory(DefaultHistoryDepth)}
	d.Sections = []lyrics.Section{
		d.newSection("[Verse 1]"),
		d.newSection("[Chorus]"),
	}
	return d
}

// FromText parses text into a new document
func FromText(title, text string) *Document {
	d := &Document{Title: title, history: NewHistory(DefaultHistoryDepth)}
	d.Sections = d.assignIDs(lyrics.Parse(text))
	return d
}

// History exposes the undo/redo stacks
func (d *Document) History() *History {
	return d.history
}

func (d *Document) newID() string {
	d.nextID++
	return strconv.Itoa(d.nextID)
}

func (d *Document) newSection(label string) lyrics.Section {
	return lyrics.Section{ID: d.newID(), Label: label, Lines: []lyrics.LineItem{{}}}
}

// assignIDs gives every section a fresh id from the document sequence
func (d *Document) assignIDs(sections []lyrics.Section) []lyrics.Section {
	out := lyrics.CloneSections(sections)
	for i := range out {
		out[i].ID = d.newID()
		if out[i].Label == "" {
			out[i].Label = lyrics.DefaultLabel
		}
		if len(out[i].Lines) == 0 {
			out[i].Lines = []lyrics.LineItem{{}}
		}
	}
	return out
}

func (d *Document) snapshot() {
	d.history.Snapshot(d.Sections)
}

func (d *Document) sectionIndex(id string) (int, error) {
	for i, s := range d.Sections {
		if s.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// Section returns a copy of the section with id
func (d *Document) Section(id string) (lyrics.Section, error) {
	i, err := d.sectionIndex(id)
	if err != nil {
		return lyrics.Section{}, err
	}
	return d.Sections[i].Clone(), nil
}

// AddSection appends a new section with one empty line and returns it
func (d *Document) AddSection(label string) lyrics.Section {
	label = strings.TrimSpace(label)
	if label == "" {
		label = NewSectionLabel
	} else if canonical, ok := lyrics.NormalizeLabel(label); ok {
		label = canonical
	} else if !strings.HasPrefix(label, "[") {
		label = "[" + label + "]"
	}

	d.snapshot()
	section := d.newSection(label)
	d.Sections = append(d.Sections, section)
	return section.Clone()
}

// DeleteSection removes the section with id. The last section cannot be
// removed.
func (d *Document) DeleteSection(id string) error {
	i, err := d.sectionIndex(id)
	if err != nil {
		return err
	}
	if len(d.Sections) <= 1 {
		return ErrLastSection
	}

	d.snapshot()
	d.Sections = append(d.Sections[:i:i], d.Sections[i+1:]...)
	return nil
}

// MoveSection shifts the section with id by delta positions, clamped to the
// ends of the list. It reports whether the order changed.
func (d *Document) MoveSection(id string, delta int) (bool, error) {
	i, err := d.sectionIndex(id)
	if err != nil {
		return false, err
	}
	target := max(0, min(len(d.Sections)-1, i+delta))
	if target == i {
		return false, nil
	}

	d.snapshot()
	section := d.Sections[i]
	d.Sections = append(d.Sections[:i:i], d.Sections[i+1:]...)
	d.Sections = append(d.Sections[:target], append([]lyrics.Section{section}, d.Sections[target:]...)...)
	return true, nil
}

// RenameSection changes the label of the section with id. Recognized labels
// are stored in canonical form.
func (d *Document) RenameSection(id, label string) error {
	i, err := d.sectionIndex(id)
	if err != nil {
		return err
	}
	label = strings.TrimSpace(label)
	if canonical, ok := lyrics.NormalizeLabel(label); ok {
		label = canonical
	} else if label == "" {
		label = lyrics.DefaultLabel
	} else if !strings.HasPrefix(label, "[") {
		label = "[" + label + "]"
	}

	d.snapshot()
	d.Sections[i].Label = label
	return nil
}

// AddLine inserts line at index within the section; an index past the end
// appends.
func (d *Document) AddLine(id string, index int, line lyrics.LineItem) error {
	i, err := d.sectionIndex(id)
	if err != nil {
		return err
	}
	lines := d.Sections[i].Lines
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrLineOutOfRange, index)
	}
	index = min(index, len(lines))

	d.snapshot()
	updated := make([]lyrics.LineItem, 0, len(lines)+1)
	updated = append(updated, lines[:index]...)
	updated = append(updated, line)
	updated = append(updated, lines[index:]...)
	d.Sections[i].Lines = updated
	return nil
}

// DeleteLine removes a line. Removing the only line leaves one empty line.
func (d *Document) DeleteLine(id string, index int) error {
	i, err := d.sectionIndex(id)
	if err != nil {
		return err
	}
	lines := d.Sections[i].Lines
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("%w: %d", ErrLineOutOfRange, index)
	}

	d.snapshot()
	if len(lines) == 1 {
		d.Sections[i].Lines = []lyrics.LineItem{{}}
		return nil
	}
	d.Sections[i].Lines = append(lines[:index:index], lines[index+1:]...)
	return nil
}

// UpdateLine replaces the line at index
func (d *Document) UpdateLine(id string, index int, line lyrics.LineItem) error {
	i, err := d.sectionIndex(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(d.Sections[i].Lines) {
		return fmt.Errorf("%w: %d", ErrLineOutOfRange, index)
	}

	d.snapshot()
	d.Sections[i].Lines[index] = line
	return nil
}

// ReplaceText swaps the whole document body for parsed text
func (d *Document) ReplaceText(text string) {
	d.Reconcile(ModeReplace, lyrics.Parse(text))
}

// Undo restores the previous state. It reports false when history is empty.
func (d *Document) Undo() bool {
	previous, ok := d.history.Undo(d.Sections)
	if !ok {
		return false
	}
	d.Sections = previous
	return true
}

// Redo reapplies the most recently undone state
func (d *Document) Redo() bool {
	next, ok := d.history.Redo(d.Sections)
	if !ok {
		return false
	}
	d.Sections = next
	return true
}

// Text renders the document in the chords form
func (d *Document) Text() string {
	return lyrics.RenderWithChords(d.Sections)
}

// Render renders the document in format
func (d *Document) Render(format lyrics.Format) string {
	return lyrics.Render(format, d.Title, d.Details, d.Sections)
}

// LineCount is the number of lines across all sections
func (d *Document) LineCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Lines)
	}
	return n
}
