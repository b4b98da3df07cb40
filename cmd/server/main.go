package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/groupnet/backend/internal/middleware"
	"github.com/anonto42/groupnet/backend/internal/notifier"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/internal/router"
	"github.com/anonto42/groupnet/backend/internal/search"
	"github.com/anonto42/groupnet/backend/pkg/config"
	"github.com/anonto42/groupnet/backend/pkg/logger"
	"github.com/anonto42/groupnet/backend/pkg/sse"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()
	slog.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat))

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		slog.Error("main: failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	store := repositories.NewStore(db.SQL)
	if err := store.AutoMigrate(); err != nil {
		slog.Error("main: auto migration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// commit hooks: search mirror and realtime notifications
	mirror := search.NewMirror(search.NewIndex(cfg.SearchBackend, db.Mongo, cfg.MongoDatabase),
		search.WithTimeout(cfg.SearchTimeout))
	store.AddHook(mirror)

	hub := sse.NewHub()
	var publisher sse.Publisher = hub
	if db.Redis != nil {
		bridge := sse.NewRedisBridge(db.Redis, sse.DefaultChannel, hub)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				slog.Error("main: redis bridge stopped, notifications stay on this instance", "error", err)
			}
		}()
		publisher = bridge
	}
	store.AddHook(notifier.New(publisher))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e)
	router.SetupRoutes(e, router.Deps{
		Store:        store,
		Searcher:     mirror,
		Hub:          hub,
		Sessions:     middleware.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction()),
		PostsPerPage: cfg.PostsPerPage,
	})

	go func() {
		slog.Info("main: server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("main: server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("main: graceful shutdown failed", "error", err)
	}
	slog.Info("main: server stopped")
}
