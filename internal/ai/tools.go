package ai

import (
	"fmt"
	"strings"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Tool is one of the lyric generation actions
type Tool string

const (
	ToolDraft         Tool = "draft"
	ToolPolish        Tool = "polish"
	ToolRewrite       Tool = "rewrite"
	ToolContinue      Tool = "continue"
	ToolSuggestChords Tool = "suggest-chords"
	ToolRhyme         Tool = "rhyme"
)

// Tools lists every tool in menu order
var Tools = []Tool{ToolDraft, ToolPolish, ToolRewrite, ToolContinue, ToolSuggestChords, ToolRhyme}

const formatRules = `Format rules:
- Start every section with its label in square brackets, e.g. [Verse 1], [Chorus], [Bridge].
- When you include chords, put them on their own line directly above the lyric line they belong to.
- No title, no commentary, no markdown.`

// ParseTool maps a command argument onto a Tool
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	if name == "chords" {
		return ToolSuggestChords, nil
	}
	for _, t := range Tools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// NeedsInput reports whether the tool requires text from the user
func (t Tool) NeedsInput() bool {
	return t == ToolDraft || t == ToolRhyme
}

// Prompt builds the request for tool. input is the user's brief or word;
// current is the song as it stands, rendered with chords.
func (t Tool) Prompt(input, current string, details lyrics.Details) string {
	var b strings.Builder

	switch t {
	case ToolDraft:
		fmt.Fprintf(&b, "Write complete song lyrics about: %s\nUse a verse, chorus, verse, chorus, bridge, chorus structure.\n", input)
	case ToolPolish:
		fmt.Fprintf(&b, "Polish and improve these lyrics while keeping the same meaning and section structure:\n\n%s\n", current)
	case ToolRewrite:
		fmt.Fprintf(&b, "Rewrite these lyrics with the same meaning but different words, keeping every section label:\n\n%s\n", current)
		if input != "" {
			fmt.Fprintf(&b, "\nDirection: %s\n", input)
		}
	case ToolContinue:
		fmt.Fprintf(&b, "Continue this song after its last section. Write one or two new sections that flow naturally:\n\n%s\n", current)
		if input != "" {
			fmt.Fprintf(&b, "\nDirection: %s\n", input)
		}
	case ToolSuggestChords:
		fmt.Fprintf(&b, "Suggest chords for these lyrics. Repeat every section label and every lyric line exactly, with one chord line above each lyric line:\n\n%s\n", current)
	case ToolRhyme:
		return fmt.Sprintf("Suggest 5 words that rhyme with %q. Return only the words, comma separated.", input)
	}

	if hint := detailsHint(details); hint != "" {
		fmt.Fprintf(&b, "\n%s\n", hint)
	}
	b.WriteString("\n")
	b.WriteString(formatRules)
	return b.String()
}

func detailsHint(d lyrics.Details) string {
	var parts []string
	if d.Genre != "" {
		parts = append(parts, "genre "+d.Genre)
	}
	if d.Key != "" {
		parts = append(parts, "key of "+d.Key)
	}
	if d.TimeSignature != "" {
		parts = append(parts, d.TimeSignature+" time")
	}
	if d.Tempo != "" {
		parts = append(parts, "tempo "+d.Tempo)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Musical context: " + strings.Join(parts, ", ") + "."
}
