package lyrics

import "slices"

// DefaultLabel is used for content that appears before any section label
const DefaultLabel = "[Verse 1]"

// LineItem pairs one chord annotation with one lyric line
type LineItem struct {
	Chords string `json:"chords"`
	Lyric  string `json:"lyric"`
}

// IsEmpty reports whether both the chord and the lyric are blank
func (l LineItem) IsEmpty() bool {
	return l.Chords == "" && l.Lyric == ""
}

// Section is a labeled block of a song holding ordered lines
type Section struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Lines []LineItem `json:"lines"`
}

// Clone returns a deep copy of the section
func (s Section) Clone() Section {
	s.Lines = slices.Clone(s.Lines)
	if s.Lines == nil {
		s.Lines = []LineItem{}
	}
	return s
}

// Lyrics returns the lyric column of the section
func (s Section) Lyrics() []string {
	out := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		out[i] = line.Lyric
	}
	return out
}

// Chords returns the chord column of the section
func (s Section) Chords() []string {
	out := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		out[i] = line.Chords
	}
	return out
}

// CloneSections deep-copies a section list
func CloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Details holds song metadata carried next to the sections
type Details struct {
	Genre         string   `json:"genre,omitempty"`
	Key           string   `json:"key,omitempty"`
	Tempo         string   `json:"tempo,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}
