package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics/parsers/amdm"
)

// MaxUploadSize caps text uploads accepted by ReadUpload
const MaxUploadSize = 256 << 10

var (
	ErrUnsupportedSource = errors.New("unsupported lyrics source")
	ErrUnsupportedFile   = errors.New("unsupported file type, send a .txt or .md file")
	ErrFileTooLarge      = errors.New("file is too large")
)

// LyricsResult represents the result of lyrics extraction
type LyricsResult struct {
	URL       string    `json:"url,omitempty"`
	Name      string    `json:"name,omitempty"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service handles lyrics extraction for different sources
type Service struct {
	amdmParser *amdm.Parser
}

// NewService creates a new lyrics service
func NewService() *Service {
	return NewServiceWithParser(amdm.NewParser())
}

// NewServiceWithParser creates a service around a preconfigured amdm parser
func NewServiceWithParser(parser *amdm.Parser) *Service {
	return &Service{amdmParser: parser}
}

// ExtractLyrics extracts a chord sheet from a URL based on the source
func (s *Service) ExtractLyrics(ctx context.Context, url string) (*LyricsResult, error) {
	logger.Debug(fmt.Sprintf("ExtractLyrics called with URL: %s", url))

	if strings.Contains(url, "amdm.ru") {
		logger.Debug("Detected amdm.ru URL, using AmDm parser")
		return s.extractFromAmdm(ctx, url)
	}

	logger.Debug(fmt.Sprintf("Unsupported URL source: %s", url))
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, url)
}

func (s *Service) extractFromAmdm(ctx context.Context, url string) (*LyricsResult, error) {
	result, err := s.amdmParser.ExtractLyricsFromAmdm(ctx, url)
	if err != nil {
		logger.Error(fmt.Sprintf("amdmParser.ExtractLyricsFromAmdm failed for URL: %s\nError: %v", url, err))
		return nil, err
	}

	logger.Debug(fmt.Sprintf("extractFromAmdm succeeded for URL: %s\nLyrics length: %d chars", url, len(result.Text)))

	return &LyricsResult{
		URL:       result.URL,
		Text:      NormalizeSectionLabels(result.Text),
		Source:    "amdm.ru",
		FetchedAt: result.FetchedAt,
	}, nil
}

// ReadUpload reads an uploaded .txt or .md file of at most MaxUploadSize bytes
func (s *Service) ReadUpload(name string, r io.Reader) (*LyricsResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, name)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, name, MaxUploadSize)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", ErrUnsupportedFile, name)
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	logger.Debug(fmt.Sprintf("ReadUpload: accepted %s (%d bytes)", name, len(data)))

	return &LyricsResult{
		Name:      name,
		Text:      text,
		Source:    "upload",
		FetchedAt: time.Now(),
	}, nil
}
