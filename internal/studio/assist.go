package studio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Suggestion is the outcome of an AI tool run
type Suggestion struct {
	Tool    ai.Tool
	Text    string
	Mode    editor.Mode
	Applied bool
}

// ModeFor returns how a tool's reply is merged into the song. The rhyme
// tool is never merged.
func ModeFor(tool ai.Tool) (editor.Mode, bool) {
	switch tool {
	case ai.ToolContinue:
		return editor.ModeContinue, true
	case ai.ToolSuggestChords:
		return editor.ModeChordOverlay, true
	case ai.ToolRhyme:
		return editor.ModeReplace, false
	default:
		return editor.ModeReplace, true
	}
}

// RunTool asks the assistant for tool's output and merges the cleaned reply
// into the chat's song. The song is read before the request and written
// after it, so a failed or cancelled request leaves the song untouched.
func (s *Studio) RunTool(ctx context.Context, chatID int64, tool ai.Tool, input string) (*Suggestion, error) {
	if s.assistant == nil {
		return nil, ErrAIDisabled
	}
	input = strings.TrimSpace(input)
	if tool.NeedsInput() && input == "" {
		return nil, fmt.Errorf("%s needs some text to work with", tool)
	}

	var (
		current string
		details lyrics.Details
	)
	if err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		current, details = doc.Text(), doc.Details
		return nil
	}); err != nil {
		return nil, err
	}

	lyricContext := ""
	if tool == ai.ToolRhyme {
		lyricContext = current
	}
	logger.Debug(fmt.Sprintf("running %s for chat %d", tool, chatID))
	reply, err := s.assistant.Complete(ctx, tool.Prompt(input, current, details), lyricContext)
	if err != nil {
		return nil, err
	}

	mode, merge := ModeFor(tool)
	suggestion := &Suggestion{Tool: tool, Mode: mode}
	if !merge {
		suggestion.Text = strings.TrimSpace(reply)
		return suggestion, nil
	}

	suggestion.Text = lyrics.NormalizeSectionLabels(lyrics.CleanGenerated(reply))
	if suggestion.Text == "" {
		return suggestion, nil
	}
	parsed := lyrics.Parse(suggestion.Text)
	err = s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		suggestion.Applied = doc.Reconcile(mode, parsed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suggestion, nil
}

// SuggestMusic asks for a musical setting of the song and stores the tempo
// and meter in its details.
func (s *Studio) SuggestMusic(ctx context.Context, chatID int64, brief string) (*ai.MusicalSuggestions, error) {
	if s.assistant == nil {
		return nil, ErrAIDisabled
	}

	var (
		current string
		genres  []string
	)
	if err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		current = lyrics.RenderLyrics(doc.Sections)
		if doc.Details.Genre != "" {
			genres = []string{doc.Details.Genre}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	suggestions, err := s.assistant.SuggestMusic(ctx, brief, current, genres)
	if err != nil {
		return nil, err
	}

	err = s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		doc.Details.Tempo = strconv.Itoa(suggestions.Tempo)
		doc.Details.TimeSignature = suggestions.TimeSignature
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}
