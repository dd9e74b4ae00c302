package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/manga-engine/internal/config"
	"github.com/jwebster45206/manga-engine/internal/events"
	"github.com/jwebster45206/manga-engine/internal/handlers"
	"github.com/jwebster45206/manga-engine/internal/journal"
	"github.com/jwebster45206/manga-engine/internal/logger"
	"github.com/jwebster45206/manga-engine/internal/middleware"
	"github.com/jwebster45206/manga-engine/internal/storage"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Manga Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"max_days", cfg.MaxDays,
		"goal_fans", cfg.GoalFans)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tables := content.LoadOrDefault(ctx, cfg.DataDir, log)

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opts)

	store := storage.NewRedisStorage(rdb, cfg.SessionTTL, log)
	if err := store.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	jrnl := journal.NewRedisJournal(rdb, cfg.SessionTTL, log)
	broadcaster := events.NewBroadcaster(rdb, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, tables, log)
	mux.Handle("/health", healthHandler)

	mux.Handle("/metrics", promhttp.Handler())

	sessionHandler := handlers.NewSessionHandler(store, jrnl, tables, game.Options{
		MaxDays:  cfg.MaxDays,
		GoalFans: cfg.GoalFans,
	}, cfg.PlayerName, log).WithPublisher(broadcaster)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(broadcaster, log))

	handler := middleware.Logger(log, middleware.Metrics(mux))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: event streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Storage and journal share one client, closed here once.
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
