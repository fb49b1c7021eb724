package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fingenius/internal/amqp"
	"fingenius/internal/analytics"
	"fingenius/internal/config"
	apphttp "fingenius/internal/http"
	"fingenius/internal/kv"
	"fingenius/internal/ledger"
	"fingenius/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Pick the key/value backend
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
		store = kv.NewMemory()
	}
	logger.Info("Store initialized", "backend", cfg.StoreBackend)

	// Change feed is optional; without it mutations stay local-only
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("AMQP change feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP change feed disabled - no AMQP_URL provided")
	}

	l := ledger.New(store)
	svc := services.NewLedgerService(l, publisher)
	defer svc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, svc, analytics.New(l))

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fingenius server", "port", cfg.Port, "backend", cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
