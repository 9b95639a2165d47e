package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/sukalov/lyricforge/internal/logger"
)

// Store is the lyric library. Remote libsql (Turso) and local SQLite
// databases share one schema.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// driverFor picks the database/sql driver for a DSN
func driverFor(dsn string) string {
	for _, prefix := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "libsql"
		}
	}
	return "sqlite"
}

// Open connects to dsn, applies the schema and returns the store.
// authToken is only used for remote libsql databases.
func Open(ctx context.Context, dsn, authToken string) (*Store, error) {
	driver := driverFor(dsn)
	source := dsn
	if driver == "libsql" && authToken != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		source = fmt.Sprintf("%s%sauthToken=%s", dsn, sep, authToken)
	}

	database, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if driver == "libsql" {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(25)
		database.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// one writer; also keeps ":memory:" databases on a single connection
		database.SetMaxOpenConns(1)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: database, driver: driver, now: time.Now}
	if err := store.migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}

	logger.Debug(fmt.Sprintf("library opened with %s driver", driver))
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			owner_id       INTEGER NOT NULL,
			title          TEXT NOT NULL,
			lyrics         TEXT NOT NULL,
			genre          TEXT NOT NULL DEFAULT '',
			tempo          TEXT NOT NULL DEFAULT '',
			song_key       TEXT NOT NULL DEFAULT '',
			time_signature TEXT NOT NULL DEFAULT '',
			tags           TEXT NOT NULL DEFAULT '[]',
			notes          TEXT NOT NULL DEFAULT '',
			content_hash   TEXT NOT NULL,
			created_at     INTEGER NOT NULL,
			updated_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS entries_owner_updated ON entries (owner_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS users (
			chat_id     INTEGER PRIMARY KEY,
			username    TEXT,
			tg_name     TEXT,
			added_at    INTEGER NOT NULL,
			songs_saved INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate library: %w", err)
		}
	}
	return nil
}

// Driver names the database/sql driver in use
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("error closing database: %w", err)
	}
	return nil
}
