package lyrics

import (
	"fmt"
	"regexp"
	"strings"
)

// Format selects a text rendering of the sections
type Format string

const (
	FormatPlain    Format = "plain"
	FormatChords   Format = "chords"
	FormatMarkdown Format = "markdown"
)

const untitledSong = "Untitled Song"

var filenameUnsafeRegex = regexp.MustCompile(`[^A-Za-z0-9]`)

// ParseFormat maps a user-supplied name onto a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "lyrics", "raw":
		return FormatPlain, nil
	case "", "chords", "lyrics+chords":
		return FormatChords, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// RenderLyrics emits labels and lyrics only
func RenderLyrics(sections []Section) string {
	blocks := make([]string, 0, len(sections))
	for _, section := range sections {
		lines := append([]string{section.Label}, section.Lyrics()...)
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderWithChords emits labels with each chord line above its lyric. This
// is the form Parse reads back into the same sections.
func RenderWithChords(sections []Section) string {
	blocks := make([]string, 0, len(sections))
	for _, section := range sections {
		lines := []string{section.Label}
		for _, line := range section.Lines {
			if strings.TrimSpace(line.Chords) != "" {
				lines = append(lines, line.Chords)
			}
			lines = append(lines, line.Lyric)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderMarkdown emits a metadata header, the chords body and optional notes
func RenderMarkdown(title string, details Details, sections []Section) string {
	if strings.TrimSpace(title) == "" {
		title = untitledSong
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	header := []struct {
		name  string
		value string
	}{
		{"Genre", details.Genre},
		{"Key", details.Key},
		{"Tempo", tempoText(details.Tempo)},
		{"Time Signature", details.TimeSignature},
		{"Tags", strings.Join(details.Tags, ", ")},
	}
	wroteHeader := false
	for _, field := range header {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "**%s:** %s\n", field.name, field.value)
		wroteHeader = true
	}
	if wroteHeader {
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(RenderWithChords(sections))
	b.WriteString("\n")

	if notes := strings.TrimSpace(details.Notes); notes != "" {
		fmt.Fprintf(&b, "\n---\n**Notes:**\n%s\n", notes)
	}
	return b.String()
}

// Render dispatches on format
func Render(format Format, title string, details Details, sections []Section) string {
	switch format {
	case FormatPlain:
		return RenderLyrics(sections)
	case FormatMarkdown:
		return RenderMarkdown(title, details, sections)
	default:
		return RenderWithChords(sections)
	}
}

// ExportFilename suggests a file name for an export of title
func ExportFilename(title string, format Format) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = "untitled"
	}
	base = filenameUnsafeRegex.ReplaceAllString(base, "_")
	if format == FormatMarkdown {
		return base + ".md"
	}
	return base + ".txt"
}

func tempoText(tempo string) string {
	tempo = strings.TrimSpace(tempo)
	if tempo == "" || strings.HasSuffix(strings.ToUpper(tempo), "BPM") {
		return tempo
	}
	return tempo + " BPM"
}
