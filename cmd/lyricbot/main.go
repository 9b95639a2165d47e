package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/bot"
	"github.com/sukalov/lyricforge/internal/bot/admin"
	"github.com/sukalov/lyricforge/internal/bot/client"
	"github.com/sukalov/lyricforge/internal/bot/common"
	"github.com/sukalov/lyricforge/internal/bot/library"
	"github.com/sukalov/lyricforge/internal/config"
	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics"
	"github.com/sukalov/lyricforge/internal/redis"
	"github.com/sukalov/lyricforge/internal/state"
	"github.com/sukalov/lyricforge/internal/studio"
)

const healthInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error(fmt.Sprintf("lyricbot stopped: %v", err))
		os.Exit(1)
	}
	logger.Info("lyricbot shut down cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	sessionsDB, err := redis.NewDBManager(cfg.Redis.RedisURL(), cfg.Redis.SessionTTL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer sessionsDB.Close()
	if err := sessionsDB.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	store, err := db.Open(ctx, cfg.Library.DSN, cfg.Library.AuthToken)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	defer store.Close()
	logger.Info(fmt.Sprintf("library opened with %s driver", store.Driver()))

	format, err := lyrics.ParseFormat(cfg.Editor.ExportFormat)
	if err != nil {
		return err
	}

	sessions := state.NewStateManager(sessionsDB)
	opts := []studio.Option{
		studio.WithExportFormat(format),
		studio.WithTimeSignature(cfg.Editor.TimeSignature),
	}

	var model string
	if cfg.AI.Enabled() {
		assistant, err := ai.NewFromConfig(cfg.AI)
		if err != nil {
			return fmt.Errorf("ai: %w", err)
		}
		model = assistant.Model()
		opts = append(opts, studio.WithAssistant(assistant))
	} else {
		logger.Info("OPENROUTER_API_KEY is not set, AI tools are disabled")
	}

	s := studio.New(sessions, store, lyrics.NewService(), opts...)

	b, err := bot.New("lyricbot", cfg.Telegram.Token, cfg.Telegram.PollTimeout, cfg.Telegram.Debug)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if cfg.Telegram.LogChannelID != 0 {
		logger.Init(b, cfg.Telegram.LogChannelID)
	}

	handlers := client.SetupHandlers(s,
		common.NewCommonHandlers(s, s.AIEnabled()).Handlers(),
		library.NewLibraryHandlers(s).Handlers(),
		admin.NewAdminHandlers(sessions, cfg.Telegram.Admins, model).Handlers(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Start(ctx, handlers)
		return nil
	})
	g.Go(func() error {
		return watchSessions(ctx, sessionsDB)
	})

	logger.Success(fmt.Sprintf("lyricbot started (ai: %t)", s.AIEnabled()))
	return g.Wait()
}

// watchSessions pings the session store until ctx is done. Failures are only
// logged.
func watchSessions(ctx context.Context, sessionsDB *redis.DBManager) error {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := sessionsDB.Ping(pingCtx); err != nil {
				logger.Error(fmt.Sprintf("session store ping failed: %v", err))
			}
			cancel()
		}
	}
}
