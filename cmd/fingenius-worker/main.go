package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fingenius/internal/amqp"
	"fingenius/internal/config"
	"fingenius/internal/kv"
	"fingenius/internal/ledger"
	"fingenius/internal/sheets"
	gsheet "fingenius/internal/sheets/google"
	mem "fingenius/internal/sheets/memory"
	"fingenius/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fingenius-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	// The worker reads the same store the server writes
	var store kv.Store
	switch cfg.StoreBackend {
	case "sqlite":
		db, err := kv.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	case "file":
		fs, err := kv.NewFile(cfg.FileStoreDir)
		if err != nil {
			logger.Error("Failed to open file store", "error", err, "dir", cfg.FileStoreDir)
			os.Exit(1)
		}
		store = fs
	default:
		logger.Error("Memory store cannot be shared with the server; use sqlite or file", "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	l := ledger.New(store)

	// Sheet mirror: Google when configured, in-process otherwise
	var (
		writer  sheets.ExpenseWriter
		deleter sheets.ExpenseDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = cli, cli
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror := mem.New()
		writer, deleter = mirror, mirror
		logger.Info("Google Sheets disabled - mirroring in memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewSyncWorker(l, writer, deleter, cfg.SyncInterval)

	// Catch up on anything missed while the worker was down
	if err := syncWorker.Reconcile(ctx); err != nil {
		logger.Error("Startup reconcile failed", "error", err)
		// Don't exit - continue with normal operation
	}

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "sync_interval", cfg.SyncInterval)
	if err := syncWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
