package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/logger"
)

// Sessions is the part of the session manager admins can reach
type Sessions interface {
	Active() int
	Clear(ctx context.Context, chatID int64) error
}

type AdminHandlers struct {
	sessions Sessions
	admins   map[string]bool
	model    string
	started  time.Time
}

func NewAdminHandlers(sessions Sessions, adminUsernames []string, model string) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range adminUsernames {
		if username = strings.TrimPrefix(strings.TrimSpace(username), "@"); username != "" {
			admins[username] = true
		}
	}

	return &AdminHandlers{
		sessions: sessions,
		admins:   admins,
		model:    model,
		started:  time.Now(),
	}
}

func (h *AdminHandlers) Handlers() *bot.Handlers {
	handlers := bot.NewHandlers()
	handlers.Commands["stats"] = h.statsHandler
	handlers.Commands["drop"] = h.dropHandler
	handlers.Callbacks["confirm_drop"] = h.confirmDropHandler
	handlers.Callbacks["abort_drop"] = h.abortDropHandler
	return handlers
}

func (h *AdminHandlers) isAdmin(user *tgbotapi.User) bool {
	return user != nil && h.admins[user.UserName]
}

func (h *AdminHandlers) statsHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if !h.isAdmin(message.From) {
		return b.SendMessage(message.Chat.ID, "admins only")
	}
	return b.SendMessage(message.Chat.ID, h.stats())
}

func (h *AdminHandlers) stats() string {
	model := h.model
	if model == "" {
		model = "disabled"
	}
	return fmt.Sprintf("sessions in memory: %d\nassistant: %s\nrunning since %s",
		h.sessions.Active(), model, humanize.Time(h.started))
}

func (h *AdminHandlers) dropHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if !h.isAdmin(message.From) {
		return b.SendMessage(message.Chat.ID, "admins only")
	}
	arg := strings.TrimSpace(message.CommandArguments())
	if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
		return b.SendMessage(message.Chat.ID, "usage: /drop <chat id>")
	}
	return b.SendMessageWithButtons(message.Chat.ID, fmt.Sprintf("the session of chat %s will be deleted. sure?", arg),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("delete", "confirm_drop:"+arg),
				tgbotapi.NewInlineKeyboardButtonData("cancel", "abort_drop"),
			),
		),
	)
}

func (h *AdminHandlers) confirmDropHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	if !h.isAdmin(query.From) {
		return b.SendMessage(query.From.ID, "admins only")
	}
	chatID, err := strconv.ParseInt(bot.CallbackArg(query.Data), 10, 64)
	if err != nil {
		return b.SendMessage(query.From.ID, "that button no longer works")
	}
	if err := h.sessions.Clear(ctx, chatID); err != nil {
		return logger.LogWithErr(fmt.Sprintf("failed to drop session of chat %d", chatID), err)
	}
	logger.Info(fmt.Sprintf("admin %s dropped session of chat %d", query.From.UserName, chatID))
	return b.SendMessage(query.From.ID, "session deleted")
}

func (h *AdminHandlers) abortDropHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(update.CallbackQuery.From.ID, "ok. cancelled")
}
