package lyrics

import (
	"regexp"
	"strings"
)

var (
	headingRegex     = regexp.MustCompile(`^#{1,6}\s+`)
	quotedTitleRegex = regexp.MustCompile(`^"[^"]*"$`)
)

// CleanGenerated strips markdown artefacts that chat models wrap around
// lyrics: code fences, bold markers, heading hashes and a leading title line.
// Chord spellings such as "C#" are left alone.
func CleanGenerated(text string) string {
	lines := splitLines(text)
	cleaned := make([]string, 0, len(lines))
	seenContent := false

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			continue
		}

		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")

		isHeading := headingRegex.MatchString(strings.TrimSpace(line))
		if isHeading {
			line = headingRegex.ReplaceAllString(strings.TrimSpace(line), "")
		}

		trimmed = strings.TrimSpace(line)
		if !seenContent && trimmed != "" {
			seenContent = true
			// A heading or quoted line ahead of everything else is the song title.
			if (isHeading || quotedTitleRegex.MatchString(trimmed)) && !IsSectionLabel(trimmed) {
				continue
			}
		}
		cleaned = append(cleaned, line)
	}

	joined := strings.Join(cleaned, "\n")
	return strings.TrimSpace(blankRunsRegex.ReplaceAllString(joined, "\n\n"))
}
