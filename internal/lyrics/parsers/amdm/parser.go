package amdm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/lyricforge/internal/logger"
)

// chordsBlockSelector locates the chord sheet on an amdm.ru song page
const chordsBlockSelector = `pre[itemprop="chordsBlock"]`

// Parser handles the HTML parsing and chord sheet extraction
type Parser struct {
	client *Client
	config *ProcessingConfig
}

// NewParser creates a new AmDm parser
func NewParser() *Parser {
	return NewParserWithClient(NewClient())
}

// NewParserWithClient creates a parser that fetches pages through client
func NewParserWithClient(client *Client) *Parser {
	return &Parser{
		client: client,
		config: &ProcessingConfig{
			MaxLineBreaks: 2,
		},
	}
}

// DropSections makes the parser skip the given sections entirely
func (p *Parser) DropSections(sections ...SectionType) *Parser {
	p.config.DropSections = append(p.config.DropSections, sections...)
	return p
}

// ExtractLyricsFromAmdm extracts the chord sheet from an AmDm.ru page
func (p *Parser) ExtractLyricsFromAmdm(ctx context.Context, url string) (*LyricsResult, error) {
	logger.Debug(fmt.Sprintf("ExtractLyricsFromAmdm: Fetching page %s", url))

	html, err := p.client.FetchPage(ctx, url)
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractLyricsFromAmdm: Failed to fetch page %s\nError: %v", url, err))
		return &LyricsResult{
			URL:     url,
			Success: false,
			Error:   err.Error(),
		}, err
	}

	logger.Debug(fmt.Sprintf("ExtractLyricsFromAmdm: Successfully fetched page %s (HTML length: %d chars)", url, len(html)))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractLyricsFromAmdm: Failed to parse HTML for %s\nError: %v", url, err))
		return &LyricsResult{
			URL:     url,
			Success: false,
			Error:   fmt.Sprintf("failed to parse HTML: %v", err),
		}, err
	}

	selection := doc.Find(chordsBlockSelector).First()
	if selection.Length() == 0 {
		logger.Error(fmt.Sprintf("ExtractLyricsFromAmdm: Target element not found for URL %s\nSearched for: %s", url, chordsBlockSelector))
		return &LyricsResult{
			URL:     url,
			Success: false,
			Error:   "Could not find target element with chords and lyrics",
		}, fmt.Errorf("target element not found")
	}

	originalHtml, err := selection.Html()
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractLyricsFromAmdm: Failed to read chord block for %s\nError: %v", url, err))
		return &LyricsResult{
			URL:     url,
			Success: false,
			Error:   fmt.Sprintf("failed to read chord block: %v", err),
		}, err
	}

	text := p.processHtmlContent(originalHtml)

	logger.Debug(fmt.Sprintf("ExtractLyricsFromAmdm: Processed chord sheet for %s (length: %d chars)", url, len(text)))

	return &LyricsResult{
		URL:       url,
		Text:      text,
		FetchedAt: time.Now(),
		Success:   true,
	}, nil
}
