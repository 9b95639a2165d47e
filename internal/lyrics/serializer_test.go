package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSections() []Section {
	return []Section{
		{ID: "1", Label: "[Verse 1]", Lines: []LineItem{{Chords: "C", Lyric: "Hello"}, {Lyric: "world"}}},
		{ID: "2", Label: "[Chorus]", Lines: []LineItem{{Chords: "F G", Lyric: "Sing along"}}},
	}
}

func TestRenderLyrics(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[Verse 1]\nHello\nworld\n\n[Chorus]\nSing along", RenderLyrics(sampleSections()))
}

func TestRenderWithChords(t *testing.T) {
	t.Parallel()

	got := RenderWithChords(sampleSections()[:1])
	assert.Equal(t, "[Verse 1]\nC\nHello\nworld", got)

	parsed := Parse(got)
	require.Len(t, parsed, 1)
	assert.Equal(t, "[Verse 1]", parsed[0].Label)
	assert.Equal(t, []LineItem{{Chords: "C", Lyric: "Hello"}, {Lyric: "world"}}, parsed[0].Lines)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("full header and notes", func(t *testing.T) {
		t.Parallel()

		details := Details{
			Genre:         "Synthwave",
			Key:           "Am",
			Tempo:         "96",
			TimeSignature: "4/4",
			Tags:          []string{"synth", "retro"},
			Notes:         "Capo 2",
		}
		sections := []Section{{Label: "[Verse 1]", Lines: []LineItem{{Chords: "C", Lyric: "Hello"}}}}

		want := "# Night Drive\n\n" +
			"**Genre:** Synthwave\n" +
			"**Key:** Am\n" +
			"**Tempo:** 96 BPM\n" +
			"**Time Signature:** 4/4\n" +
			"**Tags:** synth, retro\n\n" +
			"---\n\n" +
			"[Verse 1]\nC\nHello\n" +
			"\n---\n**Notes:**\nCapo 2\n"
		assert.Equal(t, want, RenderMarkdown("Night Drive", details, sections))
	})

	t.Run("empty metadata is omitted", func(t *testing.T) {
		t.Parallel()

		sections := []Section{{Label: "[Verse 1]", Lines: []LineItem{{Lyric: "Hi"}}}}
		assert.Equal(t, "# Untitled Song\n\n---\n\n[Verse 1]\nHi\n", RenderMarkdown("  ", Details{}, sections))
	})

	t.Run("tempo already carrying bpm", func(t *testing.T) {
		t.Parallel()

		got := RenderMarkdown("T", Details{Tempo: "120 bpm"}, sampleSections())
		assert.Contains(t, got, "**Tempo:** 120 bpm\n")
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	sections := sampleSections()
	assert.Equal(t, RenderLyrics(sections), Render(FormatPlain, "", Details{}, sections))
	assert.Equal(t, RenderWithChords(sections), Render(FormatChords, "", Details{}, sections))
	assert.Equal(t, RenderMarkdown("x", Details{}, sections), Render(FormatMarkdown, "x", Details{}, sections))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"plain":         FormatPlain,
		"Lyrics":        FormatPlain,
		"":              FormatChords,
		"lyrics+chords": FormatChords,
		"MD":            FormatMarkdown,
		"markdown":      FormatMarkdown,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "My_Song_.md", ExportFilename("My Song!", FormatMarkdown))
	assert.Equal(t, "untitled.txt", ExportFilename("", FormatPlain))
	assert.Equal(t, "Night_Drive.txt", ExportFilename("  Night Drive ", FormatChords))
}
