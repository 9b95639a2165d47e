package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricforge/internal/logger"
)

// MaxMessageLength is Telegram's limit on one text message
const MaxMessageLength = 4096

// HandlerFunc handles one update
type HandlerFunc func(ctx context.Context, b *Bot, update tgbotapi.Update) error

// Handlers routes updates. Commands match on the command name, callbacks on
// the part of the callback data before the first ":". Updates matching
// neither go through every message handler.
type Handlers struct {
	Commands  map[string]HandlerFunc
	Messages  []HandlerFunc
	Callbacks map[string]HandlerFunc
}

// NewHandlers returns an empty handler set
func NewHandlers() *Handlers {
	return &Handlers{
		Commands:  make(map[string]HandlerFunc),
		Callbacks: make(map[string]HandlerFunc),
	}
}

// Merge copies other's handlers into h; other wins on name clashes
func (h *Handlers) Merge(other *Handlers) *Handlers {
	for name, handler := range other.Commands {
		h.Commands[name] = handler
	}
	for name, handler := range other.Callbacks {
		h.Callbacks[name] = handler
	}
	h.Messages = append(h.Messages, other.Messages...)
	return h
}

// CallbackName returns the routing part of callback data
func CallbackName(data string) string {
	name, _, _ := strings.Cut(data, ":")
	return name
}

// CallbackArg returns what follows the first ":" in callback data
func CallbackArg(data string) string {
	_, arg, _ := strings.Cut(data, ":")
	return arg
}

// CallbackChatID returns the chat a callback button was pressed in
func CallbackChatID(update tgbotapi.Update) int64 {
	query := update.CallbackQuery
	if query.Message != nil && query.Message.Chat != nil {
		return query.Message.Chat.ID
	}
	return query.From.ID
}

// route picks the handlers for update
func (h *Handlers) route(update tgbotapi.Update) (string, []HandlerFunc) {
	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := h.Commands[update.Message.Command()]; exists {
			return "command", []HandlerFunc{handler}
		}
	}

	if update.CallbackQuery != nil {
		if handler, exists := h.Callbacks[CallbackName(update.CallbackQuery.Data)]; exists {
			return "callback", []HandlerFunc{handler}
		}
		return "callback", nil
	}

	return "message", h.Messages
}

// Bot represents a configurable Telegram bot
type Bot struct {
	Client       *tgbotapi.BotAPI
	updateConfig tgbotapi.UpdateConfig
	name         string
	httpClient   *http.Client
}

// New creates a new bot instance
func New(name, token string, pollTimeout int, debug bool) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	botClient.Debug = debug
	return newBot(name, botClient, pollTimeout), nil
}

// NewWithEndpoint creates a bot talking to a custom Bot API server
func NewWithEndpoint(name, token, endpoint string, pollTimeout int) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}
	return newBot(name, botClient, pollTimeout), nil
}

func newBot(name string, botClient *tgbotapi.BotAPI, pollTimeout int) *Bot {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	return &Bot{
		Client:       botClient,
		updateConfig: updateConfig,
		name:         name,
		httpClient:   &http.Client{},
	}
}

// Name is the label used in log lines
func (b *Bot) Name() string {
	return b.name
}

// Start processes updates until ctx is done. Every update runs on its own
// goroutine.
func (b *Bot) Start(ctx context.Context, handlers *Handlers) {
	logger.Info(fmt.Sprintf("[%s] authorized on account %s", b.name, b.Client.Self.UserName))
	updates := b.Client.GetUpdatesChan(b.updateConfig)

	for {
		select {
		case update := <-updates:
			go b.processUpdate(ctx, update, handlers)
		case <-ctx.Done():
			b.Client.StopReceivingUpdates()
			logger.Info(fmt.Sprintf("[%s] stopped receiving updates", b.name))
			return
		}
	}
}

// processUpdate handles incoming updates with custom handlers
func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update, handlers *Handlers) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[%s] handler panic: %v", b.name, r))
		}
	}()

	kind, matched := handlers.route(update)
	if update.CallbackQuery != nil {
		b.AnswerCallback(update.CallbackQuery.ID, "")
	}
	for _, handler := range matched {
		if err := handler(ctx, b, update); err != nil {
			logger.Error(fmt.Sprintf("[%s] %s handler error: %v", b.name, kind, err))
		}
	}
}

// SendMessage sends text, split into several messages when it is too long
func (b *Bot) SendMessage(chatID int64, text string) error {
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := b.Client.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = disableLinks
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.Client.Send(msg)
	return err
}

// SendDocument uploads content as a file
func (b *Bot) SendDocument(chatID int64, filename string, content []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: content})
	doc.Caption = caption
	_, err := b.Client.Send(doc)
	return err
}

// AnswerCallback stops the loading indicator on an inline button
func (b *Bot) AnswerCallback(callbackID, text string) {
	if _, err := b.Client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.Debug(fmt.Sprintf("[%s] failed to answer callback: %v", b.name, err))
	}
}

// DownloadFile fetches an uploaded file, reading at most limit bytes
func (b *Bot) DownloadFile(ctx context.Context, fileID string, limit int64) (io.ReadCloser, error) {
	url, err := b.Client.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, limit), resp.Body}, nil
}

// SplitMessage cuts text into chunks of at most limit runes, preferring to
// break at line ends.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen == 0 {
			return
		}
		// Telegram rejects empty texts
		if chunk := strings.Trim(current.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		if currentLen+n > limit {
			flush()
		}
		current.WriteString(line)
		currentLen += n
	}
	flush()
	return chunks
}
