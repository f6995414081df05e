package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vietride/server/internal/chat"
	"github.com/vietride/server/internal/chat/provider"
	"github.com/vietride/server/internal/chat/repo"
	"github.com/vietride/server/internal/chat/tools"
	"github.com/vietride/server/internal/core"
	"github.com/vietride/server/internal/server"
	"github.com/vietride/server/internal/store"
	logx "github.com/vietride/server/pkg/logger"
	pkgredis "github.com/vietride/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Addr        string `envconfig:"SERVER_ADDR" default:":8787"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	Gemini provider.GeminiConfig

	// Conversation actor
	Chat chat.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	logx.Init(core.ParseEnvironment(cfg.Environment))

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise Redis client")
	}
	defer rdb.Close()

	gemini, err := provider.NewGemini(ctx, cfg.Gemini)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise completion provider")
	}

	st := store.New(rdb)
	chats := chat.NewManager(
		cfg.Chat,
		gemini,
		tools.NewRegistry(),
		repo.NewRedisHistoryRepository(rdb),
		st,
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(chats, st),
	}

	go func() {
		logx.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
	logx.Info().Msg("server stopped")
}
