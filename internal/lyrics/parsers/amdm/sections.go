package amdm

import (
	"regexp"
	"strings"
)

var (
	sectionMarkerRegex   = regexp.MustCompile(`^\[\s*([^\]\d:]+?)\s*(\d+)?\s*:?\s*\]\s*:?\s*(.*)$`)
	chordSeparatorRegex  = regexp.MustCompile(`^[\s|]*$`)
	commentArtifactRegex = regexp.MustCompile(`/\*[^*]*\*?`)
)

// processTextLines walks the flattened chord block line by line, rewriting
// section markers and dropping separators and comment leftovers.
func (p *Parser) processTextLines(cleanText string) string {
	lines := strings.Split(strings.ReplaceAll(cleanText, "\r\n", "\n"), "\n")
	var processedLines []string
	skipping := false

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if trimmedLine == "" {
			if !skipping {
				processedLines = append(processedLines, "")
			}
			continue
		}

		if strings.HasPrefix(trimmedLine, "[") {
			if marker, rest, section, ok := p.handleSectionMarker(trimmedLine); ok {
				skipping = p.config.drops(section)
				if skipping {
					continue
				}
				processedLines = append(processedLines, "", marker)
				if rest != "" {
					processedLines = append(processedLines, rest)
				}
				continue
			}
		}

		if skipping {
			continue
		}

		// Bar separators carry nothing once chords are on their own lines
		if chordSeparatorRegex.MatchString(trimmedLine) {
			continue
		}

		cleanLine := commentArtifactRegex.ReplaceAllString(line, "")
		cleanLine = strings.ReplaceAll(cleanLine, "*", "")
		cleanLine = strings.TrimRight(cleanLine, " \t")
		if strings.TrimSpace(cleanLine) != "" {
			processedLines = append(processedLines, cleanLine)
		}
	}

	return p.finalCleanup(strings.Join(processedLines, "\n"))
}

// handleSectionMarker translates an amdm section marker such as
// "[Припев]:" into an English label line. Text that follows the marker on
// the same line, usually an intro chord run, is returned as rest.
func (p *Parser) handleSectionMarker(trimmedLine string) (marker, rest string, section SectionType, ok bool) {
	match := sectionMarkerRegex.FindStringSubmatch(trimmedLine)
	if match == nil {
		return "", "", "", false
	}

	section, ok = lookupSection(match[1])
	if !ok {
		return "", "", "", false
	}

	marker = "[" + section.Label()
	if match[2] != "" {
		marker += " " + match[2]
	}
	marker += "]"
	return marker, strings.TrimSpace(match[3]), section, true
}
