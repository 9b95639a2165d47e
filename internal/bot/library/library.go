package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/studio"
)

// maxResults caps the number of buttons in one keyboard
const maxResults = 10

type LibraryHandlers struct {
	studio *studio.Studio
	now    func() time.Time
}

func NewLibraryHandlers(s *studio.Studio) *LibraryHandlers {
	return &LibraryHandlers{studio: s, now: time.Now}
}

func (h *LibraryHandlers) Handlers() *bot.Handlers {
	handlers := bot.NewHandlers()
	handlers.Commands["save"] = h.saveHandler
	handlers.Commands["library"] = h.listHandler
	handlers.Commands["find"] = h.findHandler
	handlers.Commands["delete"] = h.deleteHandler
	handlers.Callbacks["open"] = h.openCallback
	handlers.Callbacks["delete"] = h.deleteCallback
	handlers.Callbacks["confirm_delete"] = h.confirmDeleteCallback
	handlers.Callbacks["abort_delete"] = h.abortDeleteCallback
	return handlers
}

func (h *LibraryHandlers) saveHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	entryID := strings.TrimSpace(update.Message.CommandArguments())

	entry, changed, err := h.studio.Save(ctx, chatID, entryID)
	if errors.Is(err, db.ErrNotFound) {
		return b.SendMessage(chatID, "no saved song with that id, use /save without an id to add a new one")
	}
	if err != nil {
		return b.SendMessage(chatID, "could not save the song, please try again")
	}
	if !changed {
		return b.SendMessage(chatID, fmt.Sprintf("%q is already saved and unchanged (id %s)", entry.Title, entry.ID))
	}
	return b.SendMessage(chatID, fmt.Sprintf("saved %q (id %s)\nupdate it later with /save %s", entry.Title, entry.ID, entry.ID))
}

func (h *LibraryHandlers) listHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	entries, err := h.studio.List(ctx, chatID, 0)
	if err != nil {
		return b.SendMessage(chatID, "could not load your library")
	}
	if len(entries) == 0 {
		return b.SendMessage(chatID, "your library is empty, /save the current song to start it")
	}
	return h.sendEntries(b, chatID, "your songs:", entries)
}

func (h *LibraryHandlers) findHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	query := strings.TrimSpace(update.Message.CommandArguments())
	if query == "" {
		return b.SendMessage(chatID, "usage: /find <title, lyric or tag>")
	}

	results, err := h.studio.Search(ctx, chatID, query)
	if err != nil {
		return b.SendMessage(chatID, "search failed, please try again")
	}
	if len(results) == 0 {
		return b.SendMessage(chatID, "nothing found")
	}
	return h.sendEntries(b, chatID, "found songs:", results)
}

func (h *LibraryHandlers) sendEntries(b *bot.Bot, chatID int64, header string, entries []db.Entry) error {
	message, keyboard := EntryList(header, entries, h.now())
	return b.SendMessageWithButtons(chatID, message, keyboard)
}

// EntryList renders entries with their age and an open button for each of
// the first ten.
func EntryList(header string, entries []db.Entry, now time.Time) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString(header)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, e := range entries {
		if i >= maxResults {
			break
		}
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, e.Title, humanize.RelTime(e.UpdatedAt, now, "ago", "from now"))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Title, "open:"+e.ID),
		))
	}
	if len(entries) > maxResults {
		fmt.Fprintf(&sb, "\n(showing the first %d of %d)", maxResults, len(entries))
	}
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *LibraryHandlers) openCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.CallbackChatID(update)
	entry, err := h.studio.Open(ctx, chatID, bot.CallbackArg(update.CallbackQuery.Data))
	if errors.Is(err, db.ErrNotFound) {
		return b.SendMessage(chatID, "that song is no longer in your library")
	}
	if err != nil {
		return b.SendMessage(chatID, "could not open the song")
	}
	song, err := h.studio.Show(ctx, chatID)
	if err != nil {
		return b.SendMessage(chatID, "could not open the song")
	}
	return b.SendMessageWithButtons(chatID, song,
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("delete from library", "delete:"+entry.ID),
			),
		),
	)
}

func (h *LibraryHandlers) deleteHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	id := strings.TrimSpace(update.Message.CommandArguments())
	if id == "" {
		return b.SendMessage(chatID, "usage: /delete <song id>")
	}
	return h.askDelete(b, chatID, id)
}

func (h *LibraryHandlers) deleteCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return h.askDelete(b, bot.CallbackChatID(update), bot.CallbackArg(update.CallbackQuery.Data))
}

func (h *LibraryHandlers) askDelete(b *bot.Bot, chatID int64, id string) error {
	return b.SendMessageWithButtons(chatID, "the song will be removed from your library for good. sure?",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("delete", "confirm_delete:"+id),
				tgbotapi.NewInlineKeyboardButtonData("cancel", "abort_delete"),
			),
		),
	)
}

func (h *LibraryHandlers) confirmDeleteCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.CallbackChatID(update)
	err := h.studio.Delete(ctx, chatID, bot.CallbackArg(update.CallbackQuery.Data))
	if errors.Is(err, db.ErrNotFound) {
		return b.SendMessage(chatID, "that button no longer works")
	}
	if err != nil {
		return b.SendMessage(chatID, "could not delete the song")
	}
	return b.SendMessage(chatID, "deleted")
}

func (h *LibraryHandlers) abortDeleteCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(bot.CallbackChatID(update), "ok. kept it")
}
