package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Defaults applied to fields the model leaves out or mistypes
const (
	DefaultTempo            = 120
	DefaultChordProgression = "C - G - Am - F"
	DefaultTimeSignature    = "4/4"
	DefaultRhythmFeel       = "Straight"
	DefaultReasoning        = "Standard pop progression"
)

// MusicalSuggestions describes a musical setting for a lyric
type MusicalSuggestions struct {
	Tempo            int    `json:"tempo"`
	ChordProgression string `json:"chordProgression"`
	TimeSignature    string `json:"timeSignature"`
	RhythmFeel       string `json:"rhythmFeel"`
	Reasoning        string `json:"reasoning"`
}

// SuggestMusic asks the model for tempo, progression, meter and feel that
// fit the lyric. Fields missing from the reply fall back to defaults; a
// reply without JSON fails with ErrNoJSON.
func (c *Client) SuggestMusic(ctx context.Context, userInput, developed string, genres []string) (*MusicalSuggestions, error) {
	reply, err := c.Complete(ctx, musicPrompt(userInput, developed, genres), "")
	if err != nil {
		return nil, err
	}
	return ParseMusicalSuggestions(reply)
}

// ParseMusicalSuggestions reads a model reply into suggestions with defaults
func ParseMusicalSuggestions(reply string) (*MusicalSuggestions, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}

	s := &MusicalSuggestions{
		Tempo:            DefaultTempo,
		ChordProgression: stringField(fields, "chordProgression", DefaultChordProgression),
		TimeSignature:    stringField(fields, "timeSignature", DefaultTimeSignature),
		RhythmFeel:       stringField(fields, "rhythmFeel", DefaultRhythmFeel),
		Reasoning:        stringField(fields, "reasoning", DefaultReasoning),
	}
	var tempo float64
	if v, ok := fields["tempo"]; ok && json.Unmarshal(v, &tempo) == nil && tempo > 0 {
		s.Tempo = int(math.Round(tempo))
	}
	return s, nil
}

func stringField(fields map[string]json.RawMessage, name, fallback string) string {
	var s string
	if v, ok := fields[name]; ok && json.Unmarshal(v, &s) == nil {
		return s
	}
	return fallback
}

func musicPrompt(userInput, developed string, genres []string) string {
	var b strings.Builder
	b.WriteString("Based on the lyrics and context below, suggest fitting musical elements. Return ONLY a JSON object.\n\n")
	if len(genres) > 0 {
		fmt.Fprintf(&b, "Selected genres: %s\n\n", strings.Join(genres, ", "))
	}
	fmt.Fprintf(&b, "User Input: %s\nDeveloped Content: %s\n\n", userInput, developed)
	b.WriteString(`Analyze the mood, energy, and style and return a JSON object with:
- tempo: number (BPM, typically 60-180)
- chordProgression: string (e.g., "Am - F - C - G")
- timeSignature: string (e.g., "4/4", "3/4", "6/8")
- rhythmFeel: string (e.g., "Straight", "Swing", "Shuffle", "Syncopated")
- reasoning: string (brief explanation of choices)

Return only valid JSON.`)
	return b.String()
}
