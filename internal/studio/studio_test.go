package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/lyrics"
	"github.com/sukalov/lyricforge/internal/state"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[int64]editor.Snapshot
}

func (m *memorySessions) SaveSession(_ context.Context, chatID int64, snap editor.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = snap
	return nil
}

func (m *memorySessions) LoadSession(_ context.Context, chatID int64) (*editor.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memorySessions) DeleteSession(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

type fakeAssistant struct {
	reply   string
	err     error
	music   *ai.MusicalSuggestions
	prompts []string
}

func (f *fakeAssistant) Complete(_ context.Context, prompt, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeAssistant) SuggestMusic(_ context.Context, _, _ string, _ []string) (*ai.MusicalSuggestions, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.music, nil
}

type fakeSources struct{}

func (fakeSources) ExtractLyrics(_ context.Context, url string) (*lyrics.LyricsResult, error) {
	if !strings.Contains(url, "amdm.ru") {
		return nil, lyrics.ErrUnsupportedSource
	}
	return &lyrics.LyricsResult{URL: url, Name: "Imported Song", Text: "[Chorus]\nDm\nla la la", Source: "amdm"}, nil
}

func (fakeSources) ReadUpload(name string, r io.Reader) (*lyrics.LyricsResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &lyrics.LyricsResult{Name: name, Text: string(data), Source: "upload"}, nil
}

var libCounter atomic.Int64

func newStudio(t *testing.T, assistant Assistant) *Studio {
	t.Helper()

	library, err := db.Open(context.Background(), fmt.Sprintf("file:studio%d?mode=memory&cache=shared", libCounter.Add(1)), "")
	require.NoError(t, err)
	t.Cleanup(func() { library.Close() })

	sessions := state.NewStateManager(&memorySessions{sessions: make(map[int64]editor.Snapshot)})
	opts := []Option{WithExportFormat(lyrics.FormatChords)}
	if assistant != nil {
		opts = append(opts, WithAssistant(assistant))
	}
	return New(sessions, library, fakeSources{}, opts...)
}

func TestModeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool  ai.Tool
		mode  editor.Mode
		merge bool
	}{
		{ai.ToolDraft, editor.ModeReplace, true},
		{ai.ToolPolish, editor.ModeReplace, true},
		{ai.ToolRewrite, editor.ModeReplace, true},
		{ai.ToolContinue, editor.ModeContinue, true},
		{ai.ToolSuggestChords, editor.ModeChordOverlay, true},
		{ai.ToolRhyme, editor.ModeReplace, false},
	}
	for _, tt := range tests {
		mode, merge := ModeFor(tt.tool)
		assert.Equal(t, tt.mode, mode, tt.tool)
		assert.Equal(t, tt.merge, merge, tt.tool)
	}
}

func TestStudio_ApplyTextUndoRedo(t *testing.T) {
	t.Parallel()

	s := newStudio(t, nil)
	ctx := context.Background()

	n, err := s.ApplyText(ctx, 1, editor.ModeReplace, "[Verse 1]\nG\nfirst line")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.ApplyText(ctx, 1, editor.ModeContinue, "[Chorus]\nsecond")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.ApplyText(ctx, 1, editor.ModeContinue, "   ")
	require.NoError(t, err)
	assert.Zero(t, n)

	text, err := s.Show(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "[Verse 1]\nG\nfirst line\n\n[Chorus]\nsecond", text)

	ok, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	text, _ = s.Show(ctx, 1)
	assert.Equal(t, "[Verse 1]\nG\nfirst line", text)

	ok, err = s.Redo(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Redo(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStudio_DetailsAndExport(t *testing.T) {
	t.Parallel()

	s := newStudio(t, nil)
	ctx := context.Background()

	_, err := s.ApplyText(ctx, 2, editor.ModeReplace, "[Verse 1]\nC G\nhello there")
	require.NoError(t, err)
	require.NoError(t, s.SetTitle(ctx, 2, " Hello Song "))
	require.NoError(t, s.SetDetail(ctx, 2, "genre", "Folk"))
	require.NoError(t, s.SetDetail(ctx, 2, "tags", "a, b,, c"))
	assert.Error(t, s.SetDetail(ctx, 2, "colour", "red"))

	title, details, err := s.Details(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Hello Song", title)
	assert.Equal(t, "Folk", details.Genre)
	assert.Equal(t, []string{"a", "b", "c"}, details.Tags)

	name, content, err := s.Export(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello_Song.txt", name)
	assert.Equal(t, "[Verse 1]\nC G\nhello there", content)

	name, content, err = s.Export(ctx, 2, "md")
	require.NoError(t, err)
	assert.Equal(t, "Hello_Song.md", name)
	assert.Contains(t, content, "# Hello Song")

	_, _, err = s.Export(ctx, 2, "pdf")
	assert.Error(t, err)
}

func TestStudio_RunTool(t *testing.T) {
	t.Parallel()

	t.Run("draft replaces the song", func(t *testing.T) {
		t.Parallel()

		assistant := &fakeAssistant{reply: "```\n# Summer\n**Verse 1**\nsun on the water\n\n**Chorus**\nwe were young\n```"}
		s := newStudio(t, assistant)
		ctx := context.Background()

		res, err := s.RunTool(ctx, 1, ai.ToolDraft, "summer")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, editor.ModeReplace, res.Mode)
		require.Len(t, assistant.prompts, 1)
		assert.Contains(t, assistant.prompts[0], "summer")

		sections, err := s.Sections(ctx, 1)
		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, "[Verse 1]", sections[0].Label)
		assert.Equal(t, "[Chorus]", sections[1].Label)
		assert.Equal(t, "sun on the water", sections[0].Lines[0].Lyric)
	})

	t.Run("chords overlay keeps lyrics", func(t *testing.T) {
		t.Parallel()

		assistant := &fakeAssistant{reply: "[Verse 1]\nAm F\nsomething else entirely"}
		s := newStudio(t, assistant)
		ctx := context.Background()

		_, err := s.ApplyText(ctx, 1, editor.ModeReplace, "[Verse 1]\nmy own words")
		require.NoError(t, err)

		res, err := s.RunTool(ctx, 1, ai.ToolSuggestChords, "")
		require.NoError(t, err)
		assert.Equal(t, editor.ModeChordOverlay, res.Mode)

		sections, err := s.Sections(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, lyrics.LineItem{Chords: "Am F", Lyric: "my own words"}, sections[0].Lines[0])
	})

	t.Run("rhyme is not merged", func(t *testing.T) {
		t.Parallel()

		assistant := &fakeAssistant{reply: " night, bright, flight \n"}
		s := newStudio(t, assistant)

		res, err := s.RunTool(context.Background(), 1, ai.ToolRhyme, "light")
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, "night, bright, flight", res.Text)
	})

	t.Run("failure leaves the song untouched", func(t *testing.T) {
		t.Parallel()

		assistant := &fakeAssistant{err: errors.New("upstream 502")}
		s := newStudio(t, assistant)
		ctx := context.Background()

		_, err := s.ApplyText(ctx, 1, editor.ModeReplace, "[Verse 1]\nkeep me")
		require.NoError(t, err)

		_, err = s.RunTool(ctx, 1, ai.ToolPolish, "")
		require.Error(t, err)

		text, err := s.Show(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "[Verse 1]\nkeep me", text)
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		s := newStudio(t, &fakeAssistant{})
		_, err := s.RunTool(context.Background(), 1, ai.ToolDraft, " ")
		assert.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		s := newStudio(t, nil)
		assert.False(t, s.AIEnabled())
		_, err := s.RunTool(context.Background(), 1, ai.ToolPolish, "")
		assert.ErrorIs(t, err, ErrAIDisabled)
		_, err = s.SuggestMusic(context.Background(), 1, "")
		assert.ErrorIs(t, err, ErrAIDisabled)
	})
}

func TestStudio_SuggestMusic(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{music: &ai.MusicalSuggestions{Tempo: 96, TimeSignature: "6/8", ChordProgression: "Am - F"}}
	s := newStudio(t, assistant)
	ctx := context.Background()

	got, err := s.SuggestMusic(ctx, 1, "slow ballad")
	require.NoError(t, err)
	assert.Equal(t, 96, got.Tempo)

	_, details, err := s.Details(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "96", details.Tempo)
	assert.Equal(t, "6/8", details.TimeSignature)

	measures, err := s.Measure(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, measures)
}

func TestStudio_RhymesAndMeasure(t *testing.T) {
	t.Parallel()

	s := newStudio(t, nil)
	ctx := context.Background()

	_, err := s.ApplyText(ctx, 1, editor.ModeReplace, "[Verse 1]\nI saw the light\nin the night\nand the day")
	require.NoError(t, err)

	rhymes, err := s.Rhymes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rhymes, 2)
	assert.Equal(t, "rhyme-1", rhymes[0].Group)
	assert.Equal(t, "0:0", rhymes[0].Position)
	assert.Equal(t, "0:1", rhymes[1].Position)
	assert.Contains(t, FormatRhymes(rhymes), "rhyme-1:")
	assert.Equal(t, "No rhymes found yet.", FormatRhymes(nil))

	measures, err := s.Measure(ctx, 1)
	require.NoError(t, err)
	require.Len(t, measures, 3)
	assert.Equal(t, 8, measures[0].Target)
	assert.Contains(t, FormatMeasure(measures), "Target: 8 syllables per line")
}

func TestStudio_Library(t *testing.T) {
	t.Parallel()

	s := newStudio(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, 1, "writer", "Sam"))
	_, err := s.ApplyText(ctx, 1, editor.ModeReplace, "[Verse 1]\nAm\nold town road")
	require.NoError(t, err)
	require.NoError(t, s.SetTitle(ctx, 1, "Old Town"))

	entry, changed, err := s.Save(ctx, 1, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "[Verse 1]\nAm\nold town road", entry.Lyrics)

	_, changed, err = s.Save(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, s.NewSong(ctx, 1))
	text, _ := s.Show(ctx, 1)
	assert.NotContains(t, text, "old town")

	opened, err := s.Open(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old Town", opened.Title)
	text, _ = s.Show(ctx, 1)
	assert.Equal(t, "Old Town\n\n[Verse 1]\nAm\nold town road", text)

	found, err := s.Search(ctx, 1, "old twn")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	list, err := s.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, 1, entry.ID))
	_, err = s.Open(ctx, 1, entry.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestStudio_ImportAndUpload(t *testing.T) {
	t.Parallel()

	s := newStudio(t, nil)
	ctx := context.Background()

	_, err := s.Import(ctx, 1, "https://example.com/song")
	assert.ErrorIs(t, err, lyrics.ErrUnsupportedSource)

	res, err := s.Import(ctx, 1, "https://amdm.ru/akkordi/x/1/y/")
	require.NoError(t, err)
	assert.Equal(t, "amdm", res.Source)
	title, _, _ := s.Details(ctx, 1)
	assert.Equal(t, "Imported Song", title)

	_, err = s.Upload(ctx, 2, "ballad.md", strings.NewReader("[Bridge]\nquiet now"))
	require.NoError(t, err)
	text, err := s.Show(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "ballad\n\n[Bridge]\nquiet now", text)
}
