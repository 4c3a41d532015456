package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ffbridge/internal/config"
	"ffbridge/internal/database"
	"ffbridge/internal/logger"
	"ffbridge/internal/repository"
	"ffbridge/internal/security"
	"ffbridge/internal/services/factfinder"
	"ffbridge/internal/services/notification"
	"ffbridge/internal/services/shopify"
	"ffbridge/internal/services/upload"
	"ffbridge/internal/status"
	"ffbridge/internal/worker"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
	"ffbridge/internal/worker/processors/export"
	"ffbridge/internal/worker/processors/notify"
	"ffbridge/internal/worker/processors/pushimport"
	uploadhandler "ffbridge/internal/worker/processors/upload"

	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	configs := repository.NewConfigRepository(db.DB, security.NewEncryptor(cfg.EncryptionKey))
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

	// Services
	catalog := shopify.NewCatalogReader(tokens, cfg.ShopifyAPIVersion, logger)
	exporter := factfinder.NewExporter(catalog, factfinder.NewRowMapper(), cfg.ExportDir, logger)
	uploader := upload.NewService(cfg.TransferTimeout, logger)
	importer := factfinder.NewPushImportService(factfinder.RestClientFactory(cfg.TransferTimeout), logger)

	var mailer notification.Mailer
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, notification mails are only logged")
		mailer = notification.NewLogMailer(logger)
	} else {
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	}
	notifier := notification.NewService(mailer, cfg.MailFrom, logger)

	// Processors
	proc := processors.NewEventProcessor(tracker, logger)
	proc.Register(messages.TypeExportProducts, export.New(configs, exporter, transport, cfg.MinExportSize, logger))
	proc.Register(messages.TypeUploadFile, uploadhandler.New(configs, uploader, transport, logger))
	proc.Register(messages.TypePushImport, pushimport.New(configs, importer, transport, logger))
	proc.Register(messages.TypeSendNotification, notify.New(notifier, logger))

	dispatcher := worker.NewDispatcher(proc, transport, cfg.MaxRetries, cfg.RetryDelay, logger)
	dispatcher.Subscribe(worker.NewStatusRecorder(tracker, logger))
	dispatcher.Subscribe(worker.NewFailureNotifier(transport, logger))
	dispatcher.Subscribe(worker.NewExportFileCleanup(logger))

	// Metrics
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening on :%s", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped: %v", err)
		}
	}()

	w := worker.New(cfg, dispatcher, logger)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down worker...")
		w.Stop()
	}()

	// Start blocks until the signal context is cancelled
	w.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Failed to stop metrics server: %v", err)
	}
}
