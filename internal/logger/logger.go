package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu        sync.RWMutex
	base      = slog.New(slog.NewTextHandler(os.Stderr, nil))
	channelID int64
	botClient BotClient
)

// BotClient delivers log lines to a chat
type BotClient interface {
	SendMessage(chatID int64, text string) error
}

// Setup replaces the local handler. format is "json" or "text".
func Setup(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	base = slog.New(handler)
	mu.Unlock()
}

// Init forwards errors and successes to a Telegram channel as well
func Init(client BotClient, chatID int64) {
	mu.Lock()
	defer mu.Unlock()
	botClient = client
	channelID = chatID
}

func Info(message string) {
	current().Info(message)
}

func Error(message string) {
	current().Error(message)
	sendLog("❌ ERROR", message)
}

func Debug(message string) {
	current().Debug(message)
}

func Success(message string) {
	current().Info(message, "outcome", "success")
	sendLog("✅ SUCCESS", message)
}

// LogWithErr logs message at info level, or at error level with err
// attached, and returns err wrapped with message.
func LogWithErr(message string, err error) error {
	if err == nil {
		Info(message)
		return nil
	}

	Error(fmt.Sprintf("%s\nError: %v", message, err))
	return fmt.Errorf("%s: %w", message, err)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func sendLog(prefix, message string) {
	mu.RLock()
	client, chatID := botClient, channelID
	mu.RUnlock()

	if client == nil || chatID == 0 {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)

	go func() {
		if err := client.SendMessage(chatID, logMessage); err != nil {
			current().Warn("failed to send log to channel", "error", err)
		}
	}()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
