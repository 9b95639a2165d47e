package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSON = errors.New("ai: no JSON block found")

var fencedBlockRegex = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// ExtractJSON returns the JSON value in a model reply. A fenced code block
// wins; otherwise the first balanced object starting at '{' is used.
func ExtractJSON(text string) (json.RawMessage, error) {
	var candidate string
	if match := fencedBlockRegex.FindStringSubmatch(text); match != nil {
		candidate = strings.TrimSpace(match[1])
	} else {
		candidate = firstObject(text)
	}

	if candidate == "" || !json.Valid([]byte(candidate)) {
		return nil, ErrNoJSON
	}
	return json.RawMessage(candidate), nil
}

func firstObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{' || ch == '[':
			depth++
		case ch == '}' || ch == ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
