package main

import (
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"chat-memory/internal"
	"chat-memory/observability"
	"chat-memory/runtime"
	"chat-memory/runtime/workers"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the lifecycle, and centralizes error reporting.
// Every 'defer' (database cleanup first) runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env loading failed: %w", err)
	}
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Cache tier (BadgerDB), in memory when no path is configured
	kv, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithInMemory(config.BadgerFilepath == "").
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("cache opening failed: %w", err)
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d%s?prefix=%s", config.InspectPort, internal.InspectEndpoint, cache.ConversationPrefix)
		log.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(kv, config.InspectPort, internal.InspectEndpoint, internal.CacheRowMapper)
	}

	defer func() {
		log.Info("Closing BadgerDB...")
		_ = kv.Close()
	}()

	// 3. Durable store (SQLite)
	db, err := storage.Open(config.SqliteFilepath)
	if err != nil {
		return fmt.Errorf("durable store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing SQLite...")
		_ = db.Close()
	}()

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// 5. Supervision & Orchestration
	messages := storage.NewMessageRepository(db, log)
	sessions := storage.NewSessionRepository(db, log)
	orchestrator, err := runtime.NewOrchestrator(
		log, metrics, workers.NewSupervisor(log, config.RestartInterval),
		cache.NewMessageCache(kv, log, config.CacheTTL, config.CacheMaxMessages),
		messages, sessions,
		runtime.Config{
			PersistWorkers:      config.PersistWorkers,
			PersistQueueSize:    config.PersistQueueSize,
			PersistMaxAttempts:  config.PersistMaxAttempts,
			PersistRetryBackoff: config.PersistRetryBackoff,
			PersistTimeout:      config.PersistTimeout,
			ModelName:           config.ModelName,
			DefaultTitle:        config.DefaultTitle,
			Janitor: workers.JanitorConfig{
				RetentionPeriod:   config.RetentionPeriod,
				RetentionSchedule: config.RetentionSchedule,
				ArchiveIdleAfter:  config.ArchiveIdleAfter,
				ArchiveSchedule:   config.ArchiveSchedule,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("orchestrator setup failed: %w", err)
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 7. Metrics & health server
	errChan := make(chan error, 1)
	server := internal.NewDebugServer(log, config.MetricsPort, registry, kv, db)
	server.Start(errChan)
	log.Info("History storage running", "at", time.Now().UTC(), "history_window", config.HistoryWindow)

	// 8. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		log.Error("Shutting down after failure", "error", runErr)
	}

	// 9. Final Cleanup, the queue is drained before the stores close
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return runErr
}
