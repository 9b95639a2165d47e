package studio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Save writes the chat's song to the library. The bool is false when the
// library already held identical content.
func (s *Studio) Save(ctx context.Context, chatID int64, entryID string) (db.Entry, bool, error) {
	var entry db.Entry
	err := s.sessions.View(ctx, chatID, func(doc *editor.Document) error {
		entry = db.Entry{
			ID:      entryID,
			OwnerID: chatID,
			Title:   doc.Title,
			Lyrics:  lyrics.NormalizeFinalLyrics(doc.Text()),
			Details: doc.Details,
		}
		return nil
	})
	if err != nil {
		return db.Entry{}, false, err
	}

	saved, changed, err := s.library.Save(ctx, entry)
	if err != nil {
		return db.Entry{}, false, err
	}
	if changed {
		logger.Success(fmt.Sprintf("chat %d saved %q (%s)", chatID, saved.Title, saved.ID))
	}
	return saved, changed, nil
}

// Open loads a library entry into the chat's session
func (s *Studio) Open(ctx context.Context, chatID int64, entryID string) (db.Entry, error) {
	entry, err := s.library.Get(ctx, chatID, entryID)
	if err != nil {
		return db.Entry{}, err
	}
	doc := editor.FromText(entry.Title, entry.Lyrics)
	doc.Details = entry.Details
	if err := s.sessions.Reset(ctx, chatID, doc); err != nil {
		return db.Entry{}, err
	}
	return entry, nil
}

func (s *Studio) List(ctx context.Context, chatID int64, limit int) ([]db.Entry, error) {
	return s.library.List(ctx, chatID, limit)
}

func (s *Studio) Delete(ctx context.Context, chatID int64, entryID string) error {
	return s.library.Delete(ctx, chatID, entryID)
}

func (s *Studio) Search(ctx context.Context, chatID int64, query string) ([]db.Entry, error) {
	return s.library.Search(ctx, chatID, query)
}

// Import replaces the chat's song with lyrics scraped from url
func (s *Studio) Import(ctx context.Context, chatID int64, url string) (*lyrics.LyricsResult, error) {
	result, err := s.sources.ExtractLyrics(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Reset(ctx, chatID, editor.FromText(result.Name, result.Text)); err != nil {
		return nil, err
	}
	return result, nil
}

// Upload replaces the chat's song with an uploaded text file
func (s *Studio) Upload(ctx context.Context, chatID int64, name string, r io.Reader) (*lyrics.LyricsResult, error) {
	result, err := s.sources.ReadUpload(name, r)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(strings.TrimSuffix(filepath.Base(result.Name), filepath.Ext(result.Name)))
	if err := s.sessions.Reset(ctx, chatID, editor.FromText(title, result.Text)); err != nil {
		return nil, err
	}
	return result, nil
}
