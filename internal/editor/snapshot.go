package editor

import (
	"strconv"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Snapshot is the JSON form of a Document, history and id sequence included
type Snapshot struct {
	Title    string           `json:"title,omitempty"`
	Details  lyrics.Details   `json:"details"`
	Sections []lyrics.Section `json:"sections"`
	History  HistoryState     `json:"history"`
	NextID   int              `json:"next_id"`
}

// Snapshot captures the full document state
func (d *Document) Snapshot() Snapshot {
	return Snapshot{
		Title:    d.Title,
		Details:  d.Details,
		Sections: lyrics.CloneSections(d.Sections),
		History:  d.history.state(),
		NextID:   d.nextID,
	}
}

// Restore rebuilds a document from a snapshot. Missing sections fall back to
// the default document body, and the id sequence is moved past every id in
// use so restored documents never hand out a duplicate.
func Restore(s Snapshot) *Document {
	d := &Document{
		Title:    s.Title,
		Details:  s.Details,
		Sections: lyrics.CloneSections(s.Sections),
		history:  historyFromState(s.History),
		nextID:   s.NextID,
	}
	d.nextID = max(d.nextID, highestID(d.Sections))
	for _, state := range d.history.undo {
		d.nextID = max(d.nextID, highestID(state))
	}
	for _, state := range d.history.redo {
		d.nextID = max(d.nextID, highestID(state))
	}

	if len(d.Sections) == 0 {
		d.Sections = []lyrics.Section{d.newSection(lyrics.DefaultLabel)}
	}
	for i := range d.Sections {
		if len(d.Sections[i].Lines) == 0 {
			d.Sections[i].Lines = []lyrics.LineItem{{}}
		}
	}
	return d
}

func highestID(sections []lyrics.Section) int {
	highest := 0
	for _, s := range sections {
		if n, err := strconv.Atoi(s.ID); err == nil {
			highest = max(highest, n)
		}
	}
	return highest
}
