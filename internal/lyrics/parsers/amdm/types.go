package amdm

import (
	"fmt"
	"strings"
	"time"
)

// LyricsResult represents the extracted chord sheet
type LyricsResult struct {
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// SectionType represents the section markers used on amdm.ru
type SectionType string

const (
	SectionVerse  SectionType = "Куплет"
	SectionChorus SectionType = "Припев"
	SectionBridge SectionType = "Переход"
	SectionIntro  SectionType = "Вступление"
	SectionSolo   SectionType = "Проигрыш"
	SectionOutro  SectionType = "Кода"
)

var sectionLabels = map[SectionType]string{
	SectionVerse:  "Verse",
	SectionChorus: "Chorus",
	SectionBridge: "Bridge",
	SectionIntro:  "Intro",
	SectionSolo:   "Interlude",
	SectionOutro:  "Coda",
}

// Label returns the English section name for the marker
func (t SectionType) Label() string {
	return sectionLabels[t]
}

// lookupSection matches a marker name case-insensitively
func lookupSection(name string) (SectionType, bool) {
	for section := range sectionLabels {
		if strings.EqualFold(string(section), name) {
			return section, true
		}
	}
	return "", false
}

// ParseSection accepts either the site marker or its English label
func ParseSection(name string) (SectionType, error) {
	name = strings.TrimSpace(name)
	if section, ok := lookupSection(name); ok {
		return section, nil
	}
	for section, label := range sectionLabels {
		if strings.EqualFold(label, name) {
			return section, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", name)
}

// ProcessingConfig holds configuration for text processing
type ProcessingConfig struct {
	DropSections  []SectionType
	MaxLineBreaks int
}

func (c *ProcessingConfig) drops(section SectionType) bool {
	for _, s := range c.DropSections {
		if s == section {
			return true
		}
	}
	return false
}
