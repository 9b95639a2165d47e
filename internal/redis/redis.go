package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redisClient "github.com/go-redis/redis/v8"

	"github.com/sukalov/lyricforge/internal/editor"
)

// SessionVersion is bumped whenever the stored snapshot layout changes.
// Sessions written under another version are ignored on load.
const SessionVersion = 1

type DBManager struct {
	client *redisClient.Client
	ttl    time.Duration
}

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// NewDBManager connects to the redis instance at url. A zero ttl keeps
// sessions forever.
func NewDBManager(url string, ttl time.Duration) (*DBManager, error) {
	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return NewDBManagerWithClient(redisClient.NewClient(opt), ttl), nil
}

func NewDBManagerWithClient(client *redisClient.Client, ttl time.Duration) *DBManager {
	return &DBManager{client: client, ttl: ttl}
}

func (redis *DBManager) Ping(ctx context.Context) error {
	return redis.client.Ping(ctx).Err()
}

func (redis *DBManager) Close() error {
	return redis.client.Close()
}

func sessionKey(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}

// SaveSession stores the chat's document snapshot
func (redis *DBManager) SaveSession(ctx context.Context, chatID int64, snap editor.Snapshot) error {
	payload, err := encodeSession(snap)
	if err != nil {
		return err
	}
	if err := redis.client.Set(ctx, sessionKey(chatID), payload, redis.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session for chat %d: %w", chatID, err)
	}
	return nil
}

// LoadSession returns the stored snapshot, or nil when the chat has none
func (redis *DBManager) LoadSession(ctx context.Context, chatID int64) (*editor.Snapshot, error) {
	data, err := redis.client.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session for chat %d: %w", chatID, err)
	}
	return decodeSession(data)
}

func (redis *DBManager) DeleteSession(ctx context.Context, chatID int64) error {
	if err := redis.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for chat %d: %w", chatID, err)
	}
	return nil
}

func encodeSession(snap editor.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return json.Marshal(envelope{Version: SessionVersion, Data: data})
}

// decodeSession returns nil for payloads written under another version
func decodeSession(payload []byte) (*editor.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if env.Version != SessionVersion || len(env.Data) == 0 {
		return nil, nil
	}
	var snap editor.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &snap, nil
}
