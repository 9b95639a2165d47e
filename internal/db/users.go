package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sukalov/lyricforge/internal/logger"
)

type User struct {
	ChatID     int64
	Username   sql.NullString
	TgName     sql.NullString
	AddedAt    time.Time
	SongsSaved int
}

// RegisterUser records a chat the first time it talks to the bot. It
// reports whether a new row was created.
func (s *Store) RegisterUser(ctx context.Context, chatID int64, username, tgName string) (bool, error) {
	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM users WHERE chat_id = ?)`
	if err := s.db.QueryRowContext(ctx, checkQuery, chatID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	if exists {
		return false, nil
	}

	insertQuery := `INSERT INTO users (chat_id, username, tg_name, added_at, songs_saved) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, insertQuery,
		chatID,
		sql.NullString{String: username, Valid: username != ""},
		sql.NullString{String: tgName, Valid: tgName != ""},
		s.now().UTC().UnixNano(),
		0,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert new user: %w", err)
	}

	logger.Info(fmt.Sprintf("new user registered: ID: %d, username: %s", chatID, username))
	return true, nil
}

// GetUser returns a registered chat
func (s *Store) GetUser(ctx context.Context, chatID int64) (User, error) {
	var (
		u       User
		addedAt int64
	)
	query := `SELECT chat_id, username, tg_name, added_at, songs_saved FROM users WHERE chat_id = ?`
	err := s.db.QueryRowContext(ctx, query, chatID).Scan(&u.ChatID, &u.Username, &u.TgName, &addedAt, &u.SongsSaved)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.AddedAt = time.Unix(0, addedAt).UTC()
	return u, nil
}
