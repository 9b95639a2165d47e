package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

func (h *ClientHandlers) exportHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	filename, content, err := h.studio.Export(ctx, chatID, update.Message.CommandArguments())
	if err != nil {
		return b.SendMessage(chatID, fmt.Sprintf("export failed: %v", err))
	}
	return b.SendDocument(chatID, filename, []byte(content), "")
}

func (h *ClientHandlers) importHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	url := strings.TrimSpace(update.Message.CommandArguments())
	if url == "" {
		return b.SendMessage(chatID, "usage: /import <amdm.ru song link>")
	}

	result, err := h.studio.Import(ctx, chatID, url)
	if errors.Is(err, lyrics.ErrUnsupportedSource) {
		return b.SendMessage(chatID, "only amdm.ru links can be imported for now")
	}
	if err != nil {
		return replyError(b, chatID, "could not import that page", err)
	}
	song, err := h.studio.Show(ctx, chatID)
	if err != nil {
		return replyError(b, chatID, "could not load your song", err)
	}
	return b.SendMessage(chatID, fmt.Sprintf("imported from %s\n\n%s", result.Source, song))
}

func (h *ClientHandlers) uploadHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	document := update.Message.Document
	if int64(document.FileSize) > lyrics.MaxUploadSize {
		return b.SendMessage(chatID, "that file is too large")
	}

	body, err := b.DownloadFile(ctx, document.FileID, lyrics.MaxUploadSize+1)
	if err != nil {
		return replyError(b, chatID, "could not download the file", err)
	}
	defer body.Close()

	_, err = h.studio.Upload(ctx, chatID, document.FileName, body)
	switch {
	case errors.Is(err, lyrics.ErrUnsupportedFile):
		return b.SendMessage(chatID, "send a .txt or .md file with UTF-8 text")
	case errors.Is(err, lyrics.ErrFileTooLarge):
		return b.SendMessage(chatID, "that file is too large")
	case err != nil:
		return replyError(b, chatID, "could not read the file", err)
	}
	return h.showHandler(ctx, b, update)
}
