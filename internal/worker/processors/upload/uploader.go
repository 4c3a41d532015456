package upload

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
	"ffbridge/internal/repository"
	svcupload "ffbridge/internal/services/upload"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
)

type FileUploader interface {
	Upload(ctx context.Context, cfg *models.ShopConfig, localPath, remoteName string) bool
}

// Handler transfers the feed file and queues the push import. The local file
// is removed once it has been delivered.
type Handler struct {
	configs   processors.ConfigFinder
	uploader  FileUploader
	publisher messages.Publisher
	logger    *logger.Logger
}

func New(configs processors.ConfigFinder, uploader FileUploader, publisher messages.Publisher, logger *logger.Logger) *Handler {
	return &Handler{
		configs:   configs,
		uploader:  uploader,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *Handler) Handle(ctx context.Context, env messages.Envelope) processors.Result {
	log := h.logger.With("shop", env.ShopDomain, "run_id", env.RunID)

	payload, err := messages.Decode[messages.UploadFile](env)
	if err != nil {
		return processors.DropWith(err)
	}

	cfg, err := h.configs.FindByID(ctx, payload.ConfigID)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			log.Error("Upload: shopify config not found for id %d", payload.ConfigID)
			return processors.DropWith(err)
		}
		return processors.RetryWith(err)
	}

	filename := svcupload.RemoteFilename(cfg.FFChannelName)
	if !h.uploader.Upload(ctx, cfg, payload.FilePath, filename) {
		log.Error("Upload file failed")
		return processors.RetryWith(fmt.Errorf("%w: %s", svcupload.ErrUploadFailed, filename))
	}
	log.Info("Upload file succeeded: %s", filename)

	next, err := messages.New(env.RunID, messages.TypePushImport, env.ShopDomain, messages.PushImport{
		ConfigID:          payload.ConfigID,
		NotificationEmail: payload.NotificationEmail,
	})
	if err != nil {
		return processors.RetryWith(err)
	}
	if err := h.publisher.Publish(ctx, next); err != nil {
		log.Error("Upload: failed to queue push import: %v", err)
		return processors.RetryWith(fmt.Errorf("queue push import: %w", err))
	}

	if err := os.Remove(payload.FilePath); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove export file %s: %v", payload.FilePath, err)
	}
	return processors.Ok()
}
