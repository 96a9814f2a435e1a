package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/api"
	"github.com/healthcare-diagnosis-server/internal/config"
	"github.com/healthcare-diagnosis-server/internal/domain"
	"github.com/healthcare-diagnosis-server/internal/engine"
	"github.com/healthcare-diagnosis-server/internal/guard"
	"github.com/healthcare-diagnosis-server/internal/history"
	"github.com/healthcare-diagnosis-server/internal/scorer"
	"github.com/healthcare-diagnosis-server/internal/store"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting diagnosis server")

	// External key-value store, with an in-process fallback when no
	// Redis is configured.
	var kv store.KeyValue
	if cfg.Cache.RedisURL != "" {
		redisStore, err := store.NewRedisStore(cfg.Cache, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		kv = redisStore
	} else {
		logger.Warn("No Redis URL configured, using in-process store")
		kv = store.NewMemoryStore()
	}

	g := guard.New(kv, cfg.RateLimit, cfg.Idempotency, logger)

	lifecycle := engine.NewLifecycle(cfg.Data, cfg.Matcher, logger)
	if err := lifecycle.Load(); err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}

	var recorder engine.Recorder
	if cfg.History.Enabled {
		histStore, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer histStore.Close()
		recorder = histStore
	}

	service := engine.NewService(lifecycle, g, scorer.New(cfg.Severity), recorder, logger)
	server := api.NewServer(cfg.Server, cfg.Logging, service, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}
