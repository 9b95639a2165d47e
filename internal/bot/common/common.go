package common

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/logger"
)

// Registrar records chats that start the bot
type Registrar interface {
	Register(ctx context.Context, chatID int64, username, name string) error
}

type CommonHandlers struct {
	registrar Registrar
	aiEnabled bool
}

const helpText = `Lyric Forge keeps one song per chat.

Writing
/show - the song with chords
/sections - section ids and labels
/title <text>, /set <field> <value> - title and details (genre, key, tempo, time, tags, notes)
/add <label>, /rename <id> <label>, /move <id> up|down, /delsection <id>
/addline <id> <line>, /setline <id> <n> <line>, /delline <id> <n>
/append <text> - add sections after the song
/chords <text> - lay chords over the existing lyrics
/undo, /redo, /new

Analysis
/rhymes - rhyme groups
/measure - syllables per line against the meter

Files
/export [plain|chords|markdown]
/import <amdm.ru link>
Send a .txt or .md file to load it, or paste lyrics as a message.

Library
/save, /library, /find <query>, /delete <id>`

const aiHelpText = `

Assistant
/ai [draft|polish|rewrite|continue|chords|rhyme] [text]
/music [brief] - tempo, meter and progression`

func NewCommonHandlers(registrar Registrar, aiEnabled bool) *CommonHandlers {
	return &CommonHandlers{registrar: registrar, aiEnabled: aiEnabled}
}

// Handlers returns the handlers every chat gets
func (h *CommonHandlers) Handlers() *bot.Handlers {
	handlers := bot.NewHandlers()
	handlers.Commands["start"] = h.startHandler
	handlers.Commands["help"] = h.helpHandler
	return handlers
}

func (h *CommonHandlers) help() string {
	if h.aiEnabled {
		return helpText + aiHelpText
	}
	return helpText
}

func (h *CommonHandlers) startHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	var username, name string
	if message.From != nil {
		username = message.From.UserName
		name = strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	}

	if err := h.registrar.Register(ctx, message.Chat.ID, username, name); err != nil {
		logger.Error(fmt.Sprintf("error registering user %d: %v", message.Chat.ID, err))
		return b.SendMessage(message.Chat.ID, "something went wrong while registering you, try /start again")
	}

	greeting := "Hi!"
	if name != "" {
		greeting = fmt.Sprintf("Hi, %s!", name)
	}
	return b.SendMessage(message.Chat.ID, greeting+"\n\n"+h.help())
}

func (h *CommonHandlers) helpHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(update.Message.Chat.ID, h.help())
}
