package admin

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeSessions struct {
	active  int
	cleared []int64
}

func (f *fakeSessions) Active() int { return f.active }

func (f *fakeSessions) Clear(_ context.Context, chatID int64) error {
	f.cleared = append(f.cleared, chatID)
	return nil
}

func TestAdminHandlers_IsAdmin(t *testing.T) {
	t.Parallel()

	h := NewAdminHandlers(&fakeSessions{}, []string{"@alice", " bob ", ""}, "")

	assert.True(t, h.isAdmin(&tgbotapi.User{UserName: "alice"}))
	assert.True(t, h.isAdmin(&tgbotapi.User{UserName: "bob"}))
	assert.False(t, h.isAdmin(&tgbotapi.User{UserName: "mallory"}))
	assert.False(t, h.isAdmin(&tgbotapi.User{}))
	assert.False(t, h.isAdmin(nil))
}

func TestAdminHandlers_Stats(t *testing.T) {
	t.Parallel()

	h := NewAdminHandlers(&fakeSessions{active: 3}, nil, "")
	stats := h.stats()
	assert.Contains(t, stats, "sessions in memory: 3")
	assert.Contains(t, stats, "assistant: disabled")

	h = NewAdminHandlers(&fakeSessions{}, nil, "anthropic/claude-3-haiku")
	assert.Contains(t, h.stats(), "assistant: anthropic/claude-3-haiku")
}

func TestAdminHandlers_Routes(t *testing.T) {
	t.Parallel()

	handlers := NewAdminHandlers(&fakeSessions{}, nil, "").Handlers()
	assert.Contains(t, handlers.Commands, "stats")
	assert.Contains(t, handlers.Commands, "drop")
	assert.Contains(t, handlers.Callbacks, "confirm_drop")
	assert.Contains(t, handlers.Callbacks, "abort_drop")
}
