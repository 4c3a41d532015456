package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffbridge/internal/api"
	"ffbridge/internal/api/handlers"
	"ffbridge/internal/config"
	"ffbridge/internal/database"
	"ffbridge/internal/logger"
	"ffbridge/internal/repository"
	"ffbridge/internal/security"
	"ffbridge/internal/services/factfinder"
	"ffbridge/internal/services/shopify"
	"ffbridge/internal/services/upload"
	"ffbridge/internal/status"
	"ffbridge/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.IsProduction())
	defer logger.Sync()

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	encryptor := security.NewEncryptor(cfg.EncryptionKey)
	configs := repository.NewConfigRepository(db.DB, encryptor)
	tokens := repository.NewTokenRepository(db.DB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tracker status.Tracker
	redisTracker, err := status.NewRedisTracker(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable, export runs are tracked in memory: %v", err)
		tracker = status.NewMemoryTracker()
	} else {
		defer redisTracker.Close()
		tracker = redisTracker
	}

	transport := worker.NewKafkaTransport(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer transport.Close()

	server := api.New(cfg, logger, api.Dependencies{
		Configs:   configs,
		Tokens:    tokens,
		Publisher: transport,
		Tracker:   tracker,
		Shopify:   shopify.NewAdminService(tokens, cfg.ShopifyAPIVersion, logger),
		Transfer:  upload.NewService(cfg.TransferTimeout, logger),
		Pinger: func(serverURL, username, password string) handlers.APIPinger {
			return factfinder.NewRestClient(serverURL, username, password, cfg.TransferTimeout)
		},
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to shut down server: %v", err)
		os.Exit(1)
	}
}
