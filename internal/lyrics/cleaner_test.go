package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanGenerated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fences, heading title and bold label",
			input: "```\n# My Song\n**[Verse 1]**\nHello\n```",
			want:  "[Verse 1]\nHello",
		},
		{
			name:  "quoted title line",
			input: "\"Midnight\"\n\n[Chorus]\nC#m E\nGo",
			want:  "[Chorus]\nC#m E\nGo",
		},
		{
			name:  "heading that is a label stays",
			input: "## Chorus\nLa la",
			want:  "Chorus\nLa la",
		},
		{
			name:  "blank runs collapse",
			input: "one\n\n\n\ntwo",
			want:  "one\n\ntwo",
		},
		{
			name:  "underscores and trailing spaces",
			input: "__Bridge__   \nfar away  ",
			want:  "Bridge\nfar away",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, CleanGenerated(tt.input))
		})
	}
}
