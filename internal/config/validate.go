package config

import (
	"fmt"
	"strings"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

// Validate checks settings shared by every binary. Load calls it.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	if c.Redis.SessionTTL < 0 {
		return fmt.Errorf("redis.session_ttl must be >= 0 (got %s)", c.Redis.SessionTTL)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai.max_tokens must be > 0 (got %d)", c.AI.MaxTokens)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be within [0, 2] (got %v)", c.AI.Temperature)
	}
	if _, err := lyrics.ParseFormat(c.Editor.ExportFormat); err != nil {
		return fmt.Errorf("editor.export_format: %w", err)
	}
	if strings.TrimSpace(c.Library.DSN) == "" {
		return fmt.Errorf("library.dsn must not be empty")
	}

	return nil
}

// ValidateBot checks the settings the Telegram bot cannot run without.
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token (BOT_TOKEN) is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis.url (REDIS_URL) is required")
	}
	return nil
}

// RedisURL builds the connection URL in the form go-redis ParseURL expects.
func (r RedisConfig) RedisURL() string {
	if strings.Contains(r.URL, "://") {
		return r.URL
	}
	scheme := "rediss"
	if r.Plaintext {
		scheme = "redis"
	}
	if r.Password == "" {
		return fmt.Sprintf("%s://%s", scheme, r.URL)
	}
	return fmt.Sprintf("%s://default:%s@%s", scheme, r.Password, r.URL)
}
