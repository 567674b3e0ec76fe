package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/chat-server/internal/api"
	"github.com/dom/chat-server/internal/config"
	"github.com/dom/chat-server/internal/logging"
	"github.com/dom/chat-server/internal/service"
	"github.com/dom/chat-server/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(true, "info")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		logger.Warn().Msg("JWT_SECRET_KEY not set, using the built-in development secret")
	}

	// Open the persistence context
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	logger.Info().Str("backend", string(store.Backend)).Msg("connected to database")

	services := service.NewServices(store.Repos, cfg, logger)
	router := api.NewRouter(services, logger)

	srv := newServer(cfg, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("chat server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := store.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close database")
	}

	logger.Info().Msg("server stopped")
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
