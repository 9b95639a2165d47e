package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/studio"
)

var toolButtons = map[ai.Tool]string{
	ai.ToolPolish:        "polish",
	ai.ToolRewrite:       "rewrite",
	ai.ToolContinue:      "continue",
	ai.ToolSuggestChords: "suggest chords",
}

func (h *ClientHandlers) aiHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	if !h.studio.AIEnabled() {
		return b.SendMessage(chatID, "the assistant is not configured on this bot")
	}

	name, input, _ := strings.Cut(strings.TrimSpace(update.Message.CommandArguments()), " ")
	if name == "" {
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, tool := range ai.Tools {
			label, ok := toolButtons[tool]
			if !ok {
				continue
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, "tool:"+string(tool)),
			))
		}
		return b.SendMessageWithButtons(chatID,
			"Pick a tool. For a new draft send /ai draft <what the song is about>, for rhymes /ai rhyme <word>.",
			tgbotapi.NewInlineKeyboardMarkup(rows...))
	}

	tool, err := ai.ParseTool(name)
	if err != nil {
		return b.SendMessage(chatID, err.Error())
	}
	return h.runTool(ctx, b, chatID, tool, input)
}

func (h *ClientHandlers) toolCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.CallbackChatID(update)
	tool, err := ai.ParseTool(bot.CallbackArg(update.CallbackQuery.Data))
	if err != nil {
		return b.SendMessage(chatID, err.Error())
	}
	return h.runTool(ctx, b, chatID, tool, "")
}

func (h *ClientHandlers) runTool(ctx context.Context, b *bot.Bot, chatID int64, tool ai.Tool, input string) error {
	if tool.NeedsInput() && strings.TrimSpace(input) == "" {
		return b.SendMessage(chatID, fmt.Sprintf("usage: /ai %s <text>", tool))
	}
	if err := b.SendMessage(chatID, "thinking..."); err != nil {
		return err
	}

	suggestion, err := h.studio.RunTool(ctx, chatID, tool, input)
	switch {
	case errors.Is(err, studio.ErrAIDisabled):
		return b.SendMessage(chatID, "the assistant is not configured on this bot")
	case errors.Is(err, ai.ErrEmptyResponse):
		return b.SendMessage(chatID, "the assistant returned nothing, try again")
	case err != nil:
		return replyError(b, chatID, "the assistant request failed", err)
	}

	if !suggestion.Applied {
		return b.SendMessage(chatID, suggestion.Text)
	}
	song, err := h.studio.Show(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not load your song", err)
	}
	return b.SendMessage(chatID, song+"\n\n(/undo to revert)")
}

func (h *ClientHandlers) musicHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	suggestions, err := h.studio.SuggestMusic(ctx, chatID, update.Message.CommandArguments())
	switch {
	case errors.Is(err, studio.ErrAIDisabled):
		return b.SendMessage(chatID, "the assistant is not configured on this bot")
	case errors.Is(err, ai.ErrNoJSON):
		return b.SendMessage(chatID, "the assistant answered in a way I could not read, try again")
	case err != nil:
		return replyError(b, chatID, "the assistant request failed", err)
	}
	return b.SendMessage(chatID, FormatMusic(suggestions))
}

// FormatMusic renders musical suggestions for a chat
func FormatMusic(m *ai.MusicalSuggestions) string {
	return fmt.Sprintf("Tempo: %d BPM\nTime signature: %s\nProgression: %s\nFeel: %s\n\n%s",
		m.Tempo, m.TimeSignature, m.ChordProgression, m.RhythmFeel, m.Reasoning)
}
