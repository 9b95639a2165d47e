package editor

import "github.com/sukalov/lyricforge/internal/lyrics"

// DefaultHistoryDepth is the number of states kept on each stack
const DefaultHistoryDepth = 20

// History keeps bounded undo and redo stacks of section snapshots. The undo
// stack grows at its tail; the redo stack grows at its head. Both evict from
// the far end once full.
type History struct {
	limit int
	undo  [][]lyrics.Section
	redo  [][]lyrics.Section
}

// NewHistory creates a history holding at most limit states per stack
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryDepth
	}
	return &History{limit: limit}
}

// Snapshot records current as the state to return to on undo and clears redo
func (h *History) Snapshot(current []lyrics.Section) {
	h.undo = h.pushTail(h.undo, lyrics.CloneSections(current))
	h.redo = nil
}

// Undo returns the most recent snapshot and stores current for redo. It
// reports false when there is nothing to undo.
func (h *History) Undo(current []lyrics.Section) ([]lyrics.Section, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	previous := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	h.redo = append([][]lyrics.Section{lyrics.CloneSections(current)}, h.redo...)
	if len(h.redo) > h.limit {
		h.redo = h.redo[:h.limit]
	}
	return lyrics.CloneSections(previous), true
}

// Redo returns the head of the redo stack and stores current for undo
func (h *History) Redo(current []lyrics.Section) ([]lyrics.Section, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[0]
	h.redo = h.redo[1:]

	h.undo = h.pushTail(h.undo, lyrics.CloneSections(current))
	return lyrics.CloneSections(next), true
}

func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }

func (h *History) pushTail(stack [][]lyrics.Section, state []lyrics.Section) [][]lyrics.Section {
	stack = append(stack, state)
	if over := len(stack) - h.limit; over > 0 {
		stack = append([][]lyrics.Section(nil), stack[over:]...)
	}
	return stack
}

// HistoryState is the serializable form of a History
type HistoryState struct {
	Limit int                `json:"limit"`
	Undo  [][]lyrics.Section `json:"undo,omitempty"`
	Redo  [][]lyrics.Section `json:"redo,omitempty"`
}

func (h *History) state() HistoryState {
	return HistoryState{
		Limit: h.limit,
		Undo:  cloneStack(h.undo),
		Redo:  cloneStack(h.redo),
	}
}

func historyFromState(s HistoryState) *History {
	h := NewHistory(s.Limit)
	h.undo = cloneStack(s.Undo)
	h.redo = cloneStack(s.Redo)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = h.undo[over:]
	}
	if len(h.redo) > h.limit {
		h.redo = h.redo[:h.limit]
	}
	return h
}

func cloneStack(stack [][]lyrics.Section) [][]lyrics.Section {
	if len(stack) == 0 {
		return nil
	}
	out := make([][]lyrics.Section, len(stack))
	for i, state := range stack {
		out[i] = lyrics.CloneSections(state)
	}
	return out
}
