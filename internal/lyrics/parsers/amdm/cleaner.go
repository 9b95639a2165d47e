package amdm

import (
	"regexp"
	"strings"
)

var excessiveBreaksRegex = regexp.MustCompile(`\n{3,}`)

// finalCleanup caps consecutive line breaks and trims the sheet
func (p *Parser) finalCleanup(text string) string {
	limit := p.config.MaxLineBreaks
	if limit < 1 {
		limit = 1
	}
	// Collapse every run of blank lines down to the configured number of breaks
	text = excessiveBreaksRegex.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) <= limit {
			return run
		}
		return strings.Repeat("\n", limit)
	})

	return strings.TrimSpace(text)
}
