// VVITU Campus Assistant Server
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

	"github.com/joho/godotenv"

	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/chat"
	"github.com/ashureev/campus-assist/internal/config"
	"github.com/ashureev/campus-assist/internal/intent"
	"github.com/ashureev/campus-assist/internal/store"
	"github.com/ashureev/campus-assist/internal/sweeper"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	cat, err := catalog.Default()
	if err != nil {
		slog.Error("Failed to load campus catalog", "error", err)
		os.Exit(1)
	}

	router := intent.NewDefault()
	slog.Info("Intent router ready", "rules", len(router.Rules()))

	// Initialize services.
	sessions := chat.NewSessionManager()
	svc := chat.NewService(router, sessions, chat.ServiceConfig{
		Delayer: chat.RandomDelay{
			Base:   cfg.Chat.TypingDelayBase,
			Jitter: cfg.Chat.TypingDelayJitter,
		},
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		Recorder:         repo,
	})
	defer svc.Close()

	limiter := chat.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	defer limiter.Stop()

	r := newRouter(routerDeps{
		cfg:      cfg,
		repo:     repo,
		catalog:  cat,
		sessions: sessions,
		chat:     svc,
		limiter:  limiter,
	})

	// Chat requests block until the typing delay elapses, so WriteTimeout
	// stays well above the configured maximum delay.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30*time.Second + cfg.Chat.TypingDelayBase + cfg.Chat.TypingDelayJitter,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start sweeper.
	sweeper.Start(ctx, cfg.Sweep, sessions, repo)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
