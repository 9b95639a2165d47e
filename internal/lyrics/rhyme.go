package lyrics

import (
	"fmt"
	"strings"
	"unicode"
)

// minRhymeKeyLen drops keys too short to group lines meaningfully
const minRhymeKeyLen = 2

// LastWord returns the final word of line, lowercased with non-letters removed
func LastWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[len(fields)-1] {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// RhymeKey returns the suffix of word starting at its last vowel, or the
// whole word when it has no vowel.
func RhymeKey(word string) string {
	runes := []rune(word)
	for i := len(runes) - 1; i >= 0; i-- {
		if strings.ContainsRune("aeiou", runes[i]) {
			return string(runes[i:])
		}
	}
	return word
}

// LinePosition formats the "sectionIndex:lineIndex" key used by RhymeGroups
func LinePosition(section, line int) string {
	return fmt.Sprintf("%d:%d", section, line)
}

type rhymeEntry struct {
	key      string
	position string
}

// RhymeGroups maps line positions to rhyme-group tags for every line whose
// rhyme key is shared with at least one other line. Tags are numbered in the
// order groups are discovered.
func RhymeGroups(sections []Section) map[string]string {
	var entries []rhymeEntry
	for si, section := range sections {
		for li, line := range section.Lines {
			word := LastWord(line.Lyric)
			if word == "" {
				continue
			}
			key := RhymeKey(word)
			if len([]rune(key)) < minRhymeKeyLen {
				continue
			}
			entries = append(entries, rhymeEntry{key: key, position: LinePosition(si, li)})
		}
	}

	groups := make(map[string]string)
	tags := make(map[string]string)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].key != entries[j].key {
				continue
			}
			tag, ok := tags[entries[i].key]
			if !ok {
				tag = fmt.Sprintf("rhyme-%d", len(tags)+1)
				tags[entries[i].key] = tag
			}
			groups[entries[i].position] = tag
			groups[entries[j].position] = tag
		}
	}
	return groups
}
