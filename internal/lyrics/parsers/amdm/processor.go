package amdm

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockCommentRegex = regexp.MustCompile(`/\*[^*]*\*/`)

// processHtmlContent converts the inner HTML of a chord block into text
func (p *Parser) processHtmlContent(blockHtml string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<pre>" + blockHtml + "</pre>"))
	if err != nil {
		return ""
	}
	return p.processSelection(doc.Find("pre").First())
}

// processSelection flattens a chord block selection into plain chord sheet text
func (p *Parser) processSelection(selection *goquery.Selection) string {
	// Author remarks are not part of the song
	selection.Find(".podbor__author-comment").Remove()

	// Chord diagrams collapse to their chord name so chord lines survive
	selection.Find(".podbor__chord").Each(func(_ int, chord *goquery.Selection) {
		name, ok := chord.Attr("data-chord")
		if !ok {
			name = strings.TrimSpace(chord.Text())
		}
		chord.ReplaceWithHtml(html.EscapeString(name))
	})

	// Section keywords get their own line
	selection.Find(".podbor__keyword").Each(func(_ int, keyword *goquery.Selection) {
		keyword.ReplaceWithHtml("\n" + html.EscapeString(strings.TrimSpace(keyword.Text())) + "\n")
	})

	text := blockCommentRegex.ReplaceAllString(selection.Text(), "")
	return p.processTextLines(text)
}
