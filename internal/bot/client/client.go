package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics"
	"github.com/sukalov/lyricforge/internal/studio"
)

// ClientHandlers drive the per-chat song editor
type ClientHandlers struct {
	studio *studio.Studio

	mu      sync.Mutex
	pending map[int64]string
}

func NewClientHandlers(s *studio.Studio) *ClientHandlers {
	return &ClientHandlers{
		studio:  s,
		pending: make(map[int64]string),
	}
}

// Handlers returns the editor command, message and callback handlers
func (h *ClientHandlers) Handlers() *bot.Handlers {
	handlers := bot.NewHandlers()
	commands := map[string]bot.HandlerFunc{
		"show":       h.showHandler,
		"sections":   h.sectionsHandler,
		"new":        h.newHandler,
		"undo":       h.undoHandler,
		"redo":       h.redoHandler,
		"title":      h.titleHandler,
		"set":        h.setHandler,
		"add":        h.addSectionHandler,
		"rename":     h.renameHandler,
		"move":       h.moveHandler,
		"delsection": h.deleteSectionHandler,
		"addline":    h.addLineHandler,
		"setline":    h.setLineHandler,
		"delline":    h.deleteLineHandler,
		"append":     h.appendHandler,
		"chords":     h.chordsHandler,
		"rhymes":     h.rhymesHandler,
		"measure":    h.measureHandler,
		"export":     h.exportHandler,
		"import":     h.importHandler,
		"ai":         h.aiHandler,
		"music":      h.musicHandler,
	}
	for name, handler := range commands {
		handlers.Commands[name] = handler
	}
	handlers.Callbacks["new"] = h.newCallback
	handlers.Callbacks["apply"] = h.applyCallback
	handlers.Callbacks["tool"] = h.toolCallback
	handlers.Messages = append(handlers.Messages, h.messageHandler)
	return handlers
}

func (h *ClientHandlers) showHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	text, err := h.studio.Show(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not load your song", err)
	}
	return b.SendMessage(chatID, text)
}

func (h *ClientHandlers) sectionsHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	sections, err := h.studio.Sections(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not load your song", err)
	}
	return b.SendMessage(chatID, FormatSections(sections))
}

// FormatSections lists section ids, labels and line counts
func FormatSections(sections []lyrics.Section) string {
	var sb strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&sb, "%s  %s (%d lines)\n", s.ID, s.Label, len(s.Lines))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (h *ClientHandlers) newHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessageWithButtons(update.Message.Chat.ID, "Start a new song? The current one is discarded unless you /save it.",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("start over", "new:confirm"),
				tgbotapi.NewInlineKeyboardButtonData("cancel", "new:abort"),
			),
		),
	)
}

func (h *ClientHandlers) newCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.CallbackChatID(update)
	if bot.CallbackArg(update.CallbackQuery.Data) != "confirm" {
		return b.SendMessage(chatID, "ok, kept your song")
	}
	if err := h.studio.NewSong(ctx, chatID); err != nil {
		return replyError(b, chatID, "could not start a new song", err)
	}
	return b.SendMessage(chatID, "fresh song started. paste some lyrics or try /help")
}

func (h *ClientHandlers) undoHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	ok, err := h.studio.Undo(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "undo failed", err)
	}
	if !ok {
		return b.SendMessage(chatID, "nothing to undo")
	}
	return h.showHandler(ctx, b, update)
}

func (h *ClientHandlers) redoHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	ok, err := h.studio.Redo(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "redo failed", err)
	}
	if !ok {
		return b.SendMessage(chatID, "nothing to redo")
	}
	return h.showHandler(ctx, b, update)
}

func (h *ClientHandlers) titleHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	title := strings.TrimSpace(update.Message.CommandArguments())
	if title == "" {
		return b.SendMessage(chatID, "usage: /title <song title>")
	}
	if err := h.studio.SetTitle(ctx, chatID, title); err != nil {
		return replyError(b, chatID, "could not set the title", err)
	}
	return b.SendMessage(chatID, fmt.Sprintf("title set to %q", title))
}

func (h *ClientHandlers) setHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	field, value, ok := strings.Cut(strings.TrimSpace(update.Message.CommandArguments()), " ")
	if !ok || field == "" {
		return b.SendMessage(chatID, "usage: /set <genre|key|tempo|time|tags|notes> <value>")
	}
	if err := h.studio.SetDetail(ctx, chatID, field, value); err != nil {
		return b.SendMessage(chatID, err.Error())
	}
	return b.SendMessage(chatID, fmt.Sprintf("%s updated", field))
}

func (h *ClientHandlers) addSectionHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	label := update.Message.CommandArguments()
	var added lyrics.Section
	err := h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		added = doc.AddSection(label)
		return nil
	})
	if err != nil {
		return replyError(b, chatID, "could not add the section", err)
	}
	return b.SendMessage(chatID, fmt.Sprintf("added %s (id %s)", added.Label, added.ID))
}

func (h *ClientHandlers) renameHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	id, label, ok := strings.Cut(strings.TrimSpace(update.Message.CommandArguments()), " ")
	if !ok {
		return b.SendMessage(chatID, "usage: /rename <section id> <label>")
	}
	err := h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		return doc.RenameSection(id, label)
	})
	return h.replyEdit(ctx, b, update, err)
}

func (h *ClientHandlers) moveHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	args := strings.Fields(update.Message.CommandArguments())
	if len(args) != 2 {
		return b.SendMessage(chatID, "usage: /move <section id> up|down")
	}
	delta, err := parseDirection(args[1])
	if err != nil {
		return b.SendMessage(chatID, err.Error())
	}

	var moved bool
	err = h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		var err error
		moved, err = doc.MoveSection(args[0], delta)
		return err
	})
	if err == nil && !moved {
		return b.SendMessage(chatID, "that section cannot move any further")
	}
	return h.replyEdit(ctx, b, update, err)
}

func parseDirection(arg string) (int, error) {
	switch strings.ToLower(arg) {
	case "up", "-1":
		return -1, nil
	case "down", "+1", "1":
		return 1, nil
	}
	return 0, fmt.Errorf("direction must be up or down, got %q", arg)
}

func (h *ClientHandlers) deleteSectionHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	id := strings.TrimSpace(update.Message.CommandArguments())
	err := h.studio.Edit(ctx, update.Message.Chat.ID, func(doc *editor.Document) error {
		return doc.DeleteSection(id)
	})
	return h.replyEdit(ctx, b, update, err)
}

func (h *ClientHandlers) addLineHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	id, rest, ok := strings.Cut(strings.TrimSpace(update.Message.CommandArguments()), " ")
	if !ok {
		return b.SendMessage(chatID, "usage: /addline <section id> <chords | lyric>")
	}
	line := ParseLineInput(rest)
	err := h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		section, err := doc.Section(id)
		if err != nil {
			return err
		}
		// a section holding only its placeholder line gets it replaced
		if len(section.Lines) == 1 && section.Lines[0].IsEmpty() {
			return doc.UpdateLine(id, 0, line)
		}
		return doc.AddLine(id, len(section.Lines), line)
	})
	return h.replyEdit(ctx, b, update, err)
}

func (h *ClientHandlers) setLineHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	parts := strings.SplitN(strings.TrimSpace(update.Message.CommandArguments()), " ", 3)
	if len(parts) < 3 {
		return b.SendMessage(chatID, "usage: /setline <section id> <line number> <chords | lyric>")
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return b.SendMessage(chatID, "line number must be a number")
	}
	line := ParseLineInput(parts[2])
	err = h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		return doc.UpdateLine(parts[0], n-1, line)
	})
	return h.replyEdit(ctx, b, update, err)
}

func (h *ClientHandlers) deleteLineHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	args := strings.Fields(update.Message.CommandArguments())
	if len(args) != 2 {
		return b.SendMessage(chatID, "usage: /delline <section id> <line number>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return b.SendMessage(chatID, "line number must be a number")
	}
	err = h.studio.Edit(ctx, chatID, func(doc *editor.Document) error {
		return doc.DeleteLine(args[0], n-1)
	})
	return h.replyEdit(ctx, b, update, err)
}

// ParseLineInput reads one line typed by the user. "chords | lyric" sets
// both columns; otherwise the classifier decides which column the text is.
func ParseLineInput(input string) lyrics.LineItem {
	if chords, lyric, ok := strings.Cut(input, "|"); ok {
		return lyrics.LineItem{Chords: strings.TrimSpace(chords), Lyric: strings.TrimSpace(lyric)}
	}
	trimmed := strings.TrimSpace(input)
	if lyrics.IsChordLine(trimmed) {
		return lyrics.LineItem{Chords: trimmed}
	}
	return lyrics.LineItem{Lyric: trimmed}
}

// replyEdit answers an editor command with the updated song or the reason
// it failed.
func (h *ClientHandlers) replyEdit(ctx context.Context, b *bot.Bot, update tgbotapi.Update, err error) error {
	chatID := update.Message.Chat.ID
	switch {
	case err == nil:
		return h.showHandler(ctx, b, update)
	case errors.Is(err, editor.ErrSectionNotFound):
		return b.SendMessage(chatID, "no section with that id, see /sections")
	case errors.Is(err, editor.ErrLineOutOfRange):
		return b.SendMessage(chatID, "no line with that number")
	case errors.Is(err, editor.ErrLastSection):
		return b.SendMessage(chatID, "a song needs at least one section")
	}
	return replyError(b, chatID, "edit failed", err)
}

func (h *ClientHandlers) appendHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return h.apply(ctx, b, update.Message.Chat.ID, editor.ModeContinue, update.Message.CommandArguments())
}

func (h *ClientHandlers) chordsHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return h.apply(ctx, b, update.Message.Chat.ID, editor.ModeChordOverlay, update.Message.CommandArguments())
}

func (h *ClientHandlers) apply(ctx context.Context, b *bot.Bot, chatID int64, mode editor.Mode, text string) error {
	n, err := h.studio.ApplyText(ctx, chatID, mode, text)
	if err != nil {
		return replyError(b, chatID, "could not update your song", err)
	}
	if n == 0 {
		return b.SendMessage(chatID, "send some lyrics along with the command")
	}
	song, err := h.studio.Show(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not load your song", err)
	}
	return b.SendMessage(chatID, song)
}

// messageHandler takes pasted lyrics and asks how to merge them
func (h *ClientHandlers) messageHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if message == nil {
		return nil
	}
	if message.Document != nil {
		return h.uploadHandler(ctx, b, update)
	}
	if message.IsCommand() {
		return b.SendMessage(message.Chat.ID, "unknown command, see /help")
	}
	if strings.TrimSpace(message.Text) == "" {
		return nil
	}

	h.mu.Lock()
	h.pending[message.Chat.ID] = message.Text
	h.mu.Unlock()

	return b.SendMessageWithButtons(message.Chat.ID, "What should I do with these lyrics?",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("replace song", "apply:"+editor.ModeReplace.String()),
				tgbotapi.NewInlineKeyboardButtonData("add after", "apply:"+editor.ModeContinue.String()),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("use chords only", "apply:"+editor.ModeChordOverlay.String()),
			),
		),
	)
}

func (h *ClientHandlers) takePending(chatID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	text, ok := h.pending[chatID]
	delete(h.pending, chatID)
	return text, ok
}

func (h *ClientHandlers) applyCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.CallbackChatID(update)
	text, ok := h.takePending(chatID)
	if !ok {
		return b.SendMessage(chatID, "that button has expired, paste the lyrics again")
	}

	var mode editor.Mode
	switch bot.CallbackArg(update.CallbackQuery.Data) {
	case editor.ModeContinue.String():
		mode = editor.ModeContinue
	case editor.ModeChordOverlay.String():
		mode = editor.ModeChordOverlay
	default:
		mode = editor.ModeReplace
	}
	logger.Debug(fmt.Sprintf("chat %d applies pasted text with %s", chatID, mode))
	return h.apply(ctx, b, chatID, mode, text)
}

func (h *ClientHandlers) rhymesHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	rhymes, err := h.studio.Rhymes(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not analyse rhymes", err)
	}
	return b.SendMessage(chatID, studio.FormatRhymes(rhymes))
}

func (h *ClientHandlers) measureHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	measures, err := h.studio.Measure(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not measure lines", err)
	}
	return b.SendMessage(chatID, studio.FormatMeasure(measures))
}

// replyError logs err and tells the user what failed
func replyError(b *bot.Bot, chatID int64, what string, err error) error {
	logger.Error(fmt.Sprintf("chat %d: %s: %v", chatID, what, err))
	if sendErr := b.SendMessage(chatID, what+", please try again"); sendErr != nil {
		return sendErr
	}
	return nil
}

// SetupHandlers merges the editor handlers with extra handler sets, such as
// the common and library ones, into the set the bot runs with.
func SetupHandlers(s *studio.Studio, extra ...*bot.Handlers) *bot.Handlers {
	all := bot.NewHandlers()
	for _, h := range extra {
		all.Merge(h)
	}
	return all.Merge(NewClientHandlers(s).Handlers())
}
