package db

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// ErrNotFound is returned when an entry does not exist for the owner
var ErrNotFound = errors.New("entry not found")

// FuzzyTitleThreshold is the Jaro-Winkler similarity a title needs to match
// a search query it does not contain.
const FuzzyTitleThreshold = 0.85

// Entry is one saved song
type Entry struct {
	ID          string
	OwnerID     int64
	Title       string
	Lyrics      string
	Details     lyrics.Details
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Hash fingerprints the title, lyrics and details of the entry
func (e Entry) Hash() string {
	h := blake3.New()
	write := func(part string) {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, part := range []string{
		e.Title, e.Lyrics,
		e.Details.Genre, e.Details.Tempo, e.Details.Key, e.Details.TimeSignature,
		e.Details.Notes,
	} {
		write(part)
	}
	write(strconv.Itoa(len(e.Details.Tags)))
	for _, tag := range e.Details.Tags {
		write(tag)
	}
	return hex.EncodeToString(h.Sum(nil))
}

const entryColumns = `id, owner_id, title, lyrics, genre, tempo, song_key, time_signature, tags, notes, content_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e                Entry
		tags             string
		created, updated int64
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Lyrics,
		&e.Details.Genre, &e.Details.Tempo, &e.Details.Key, &e.Details.TimeSignature,
		&tags, &e.Details.Notes, &e.ContentHash, &created, &updated)
	if err != nil {
		return Entry{}, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &e.Details.Tags); err != nil {
			return Entry{}, fmt.Errorf("failed to decode tags of %s: %w", e.ID, err)
		}
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	e.UpdatedAt = time.Unix(0, updated).UTC()
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

// Save stores e. An entry without an ID is inserted unless the owner already
// has one with identical content; an entry with an ID is updated in place.
// The returned bool is false when nothing had to be written.
func (s *Store) Save(ctx context.Context, e Entry) (Entry, bool, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		e.Title = "Untitled Song"
	}
	e.ContentHash = e.Hash()
	tags, err := encodeTags(e.Details.Tags)
	if err != nil {
		return Entry{}, false, err
	}
	now := s.now().UTC()

	if e.ID == "" {
		existing, err := s.findByHash(ctx, e.OwnerID, e.ContentHash)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Entry{}, false, err
		}

		e.ID = uuid.NewString()
		e.CreatedAt, e.UpdatedAt = now, now
		if err := s.insert(ctx, e, tags); err != nil {
			return Entry{}, false, err
		}
		return e, true, nil
	}

	current, err := s.Get(ctx, e.OwnerID, e.ID)
	if err != nil {
		return Entry{}, false, err
	}
	if current.ContentHash == e.ContentHash {
		return current, false, nil
	}

	e.CreatedAt, e.UpdatedAt = current.CreatedAt, now
	query := `UPDATE entries SET title = ?, lyrics = ?, genre = ?, tempo = ?, song_key = ?, time_signature = ?,
		tags = ?, notes = ?, content_hash = ?, updated_at = ? WHERE id = ? AND owner_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		e.Title, e.Lyrics, e.Details.Genre, e.Details.Tempo, e.Details.Key, e.Details.TimeSignature,
		tags, e.Details.Notes, e.ContentHash, now.UnixNano(), e.ID, e.OwnerID,
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to update entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return Entry{}, false, fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	return e, true, nil
}

// insert adds the entry and bumps the owner's saved-songs counter in one
// transaction.
func (s *Store) insert(ctx context.Context, e Entry, tags string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.Title, e.Lyrics,
		e.Details.Genre, e.Details.Tempo, e.Details.Key, e.Details.TimeSignature,
		tags, e.Details.Notes, e.ContentHash, e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET songs_saved = songs_saved + 1 WHERE chat_id = ?`, e.OwnerID); err != nil {
		return fmt.Errorf("failed to increment saved songs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

func (s *Store) findByHash(ctx context.Context, ownerID int64, hash string) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE owner_id = ? AND content_hash = ? LIMIT 1`
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, ownerID, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to look up entry: %w", err)
	}
	return e, nil
}

// Get returns one of the owner's entries
func (s *Store) Get(ctx context.Context, ownerID int64, id string) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ? AND owner_id = ?`
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// List returns the owner's entries, most recently updated first. A limit
// of zero or less returns everything.
func (s *Store) List(ctx context.Context, ownerID int64, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE owner_id = ? ORDER BY updated_at DESC, title ASC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return entries, nil
}

// Delete removes one of the owner's entries
func (s *Store) Delete(ctx context.Context, ownerID int64, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Search returns the owner's entries whose title, lyrics or tags contain
// query, plus entries whose title is a close fuzzy match for it.
func (s *Store) Search(ctx context.Context, ownerID int64, query string) ([]Entry, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []Entry{}, nil
	}

	all, err := s.List(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}

	matches := []Entry{}
	for _, e := range all {
		if matchesEntry(e, needle) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

func matchesEntry(e Entry, needle string) bool {
	title := strings.ToLower(e.Title)
	if strings.Contains(title, needle) || strings.Contains(strings.ToLower(e.Lyrics), needle) {
		return true
	}
	for _, tag := range e.Details.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return matchr.JaroWinkler(title, needle, false) >= FuzzyTitleThreshold
}
