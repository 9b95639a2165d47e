package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

// ErrAIDisabled is returned by AI operations when no model is configured
var ErrAIDisabled = errors.New("ai assistant is not configured")

// Sessions holds one document per chat. *state.StateManager implements it.
type Sessions interface {
	WithDocument(ctx context.Context, chatID int64, fn func(doc *editor.Document) error) error
	View(ctx context.Context, chatID int64, fn func(doc *editor.Document) error) error
	Reset(ctx context.Context, chatID int64, doc *editor.Document) error
	Clear(ctx context.Context, chatID int64) error
}

// Assistant generates text. *ai.Client implements it.
type Assistant interface {
	Complete(ctx context.Context, prompt, lyricContext string) (string, error)
	SuggestMusic(ctx context.Context, userInput, developed string, genres []string) (*ai.MusicalSuggestions, error)
}

// Library persists finished songs. *db.Store implements it.
type Library interface {
	Save(ctx context.Context, e db.Entry) (db.Entry, bool, error)
	Get(ctx context.Context, ownerID int64, id string) (db.Entry, error)
	List(ctx context.Context, ownerID int64, limit int) ([]db.Entry, error)
	Delete(ctx context.Context, ownerID int64, id string) error
	Search(ctx context.Context, ownerID int64, query string) ([]db.Entry, error)
	RegisterUser(ctx context.Context, chatID int64, username, tgName string) (bool, error)
}

// Sources turns URLs and uploaded files into lyric text. *lyrics.Service
// implements it.
type Sources interface {
	ExtractLyrics(ctx context.Context, url string) (*lyrics.LyricsResult, error)
	ReadUpload(name string, r io.Reader) (*lyrics.LyricsResult, error)
}

// Studio is what the front-ends talk to: it ties chat sessions to the
// parser, the reconciler, the assistant, the library and the sources.
type Studio struct {
	sessions      Sessions
	assistant     Assistant
	library       Library
	sources       Sources
	exportFormat  lyrics.Format
	timeSignature string
}

// Option configures a Studio
type Option func(*Studio)

// WithAssistant enables the AI tools
func WithAssistant(a Assistant) Option {
	return func(s *Studio) { s.assistant = a }
}

// WithExportFormat sets the format used when Export gets no format
func WithExportFormat(f lyrics.Format) Option {
	return func(s *Studio) { s.exportFormat = f }
}

// WithTimeSignature sets the meter assumed by Measure when a song has none
func WithTimeSignature(ts string) Option {
	return func(s *Studio) { s.timeSignature = ts }
}

func New(sessions Sessions, library Library, sources Sources, opts ...Option) *Studio {
	s := &Studio{
		sessions:      sessions,
		library:       library,
		sources:       sources,
		exportFormat:  lyrics.FormatMarkdown,
		timeSignature: ai.DefaultTimeSignature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AIEnabled reports whether AI tools are available
func (s *Studio) AIEnabled() bool {
	return s.assistant != nil
}

// Register records the chat in the library
func (s *Studio) Register(ctx context.Context, chatID int64, username, name string) error {
	_, err := s.library.RegisterUser(ctx, chatID, username, name)
	return err
}

// Show renders the chat's song with chords, a title line first when set
func (s *Studio) Show(ctx context.Context, chatID int64) (string, error) {
	var out string
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		out = renderForChat(doc)
		return nil
	})
	return out, err
}

func renderForChat(doc *editor.Document) string {
	body := doc.Text()
	if strings.TrimSpace(doc.Title) == "" {
		return body
	}
	return doc.Title + "\n\n" + body
}

// Sections lists the chat's sections in order
func (s *Studio) Sections(ctx context.Context, chatID int64) ([]lyrics.Section, error) {
	var out []lyrics.Section
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		out = lyrics.CloneSections(doc.Sections)
		return nil
	})
	return out, err
}

// NewSong discards the chat's song and starts from the default one
func (s *Studio) NewSong(ctx context.Context, chatID int64) error {
	return s.sessions.Reset(ctx, chatID, nil)
}

// ApplyText parses text and merges it into the chat's song with mode. It
// returns the number of parsed sections; zero means blank text and no change.
func (s *Studio) ApplyText(ctx context.Context, chatID int64, mode editor.Mode, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	parsed := lyrics.Parse(text)
	err := s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		doc.Reconcile(mode, parsed)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(parsed), nil
}

// Edit runs an editor operation against the chat's song
func (s *Studio) Edit(ctx context.Context, chatID int64, fn func(doc *editor.Document) error) error {
	return s.sessions.WithDocument(ctx, chatID, fn)
}

// Undo steps the chat's song back. It reports false when there is nothing
// to undo.
func (s *Studio) Undo(ctx context.Context, chatID int64) (bool, error) {
	var ok bool
	err := s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		ok = doc.Undo()
		return nil
	})
	return ok, err
}

// Redo reapplies the last undone change
func (s *Studio) Redo(ctx context.Context, chatID int64) (bool, error) {
	var ok bool
	err := s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		ok = doc.Redo()
		return nil
	})
	return ok, err
}

// SetTitle renames the song
func (s *Studio) SetTitle(ctx context.Context, chatID int64, title string) error {
	return s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		doc.Title = strings.TrimSpace(title)
		return nil
	})
}

// SetDetail sets one metadata field: genre, key, tempo, time, tags or notes
func (s *Studio) SetDetail(ctx context.Context, chatID int64, field, value string) error {
	value = strings.TrimSpace(value)
	return s.sessions.WithDocument(ctx, chatID, func(doc *editor.Document) error {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "genre":
			doc.Details.Genre = value
		case "key":
			doc.Details.Key = value
		case "tempo", "bpm":
			doc.Details.Tempo = value
		case "time", "meter", "time_signature":
			doc.Details.TimeSignature = value
		case "tags":
			doc.Details.Tags = splitTags(value)
		case "notes":
			doc.Details.Notes = value
		default:
			return fmt.Errorf("unknown detail %q", field)
		}
		return nil
	})
}

func splitTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Details returns the song's title and metadata
func (s *Studio) Details(ctx context.Context, chatID int64) (string, lyrics.Details, error) {
	var (
		title   string
		details lyrics.Details
	)
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		title, details = doc.Title, doc.Details
		return nil
	})
	return title, details, err
}

// Export renders the song in format, or the configured default when format
// is empty, and suggests a file name.
func (s *Studio) Export(ctx context.Context, chatID int64, format string) (filename, content string, err error) {
	f := s.exportFormat
	if strings.TrimSpace(format) != "" {
		if f, err = lyrics.ParseFormat(format); err != nil {
			return "", "", err
		}
	}
	err = s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		filename = lyrics.ExportFilename(doc.Title, f)
		content = doc.Render(f)
		return nil
	})
	return filename, content, err
}
