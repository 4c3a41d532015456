package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ffbridge/internal/logger"
	"ffbridge/internal/repository"
	"ffbridge/internal/services/factfinder"
	"ffbridge/internal/services/shopify"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
)

type FeedExporter interface {
	Export(ctx context.Context, shop, salesChannel, locale string) (string, error)
}

// Handler writes the feed file and queues its upload.
type Handler struct {
	configs   processors.ConfigFinder
	exporter  FeedExporter
	publisher messages.Publisher
	minSize   int64
	logger    *logger.Logger
}

func New(configs processors.ConfigFinder, exporter FeedExporter, publisher messages.Publisher, minSize int64, logger *logger.Logger) *Handler {
	return &Handler{
		configs:   configs,
		exporter:  exporter,
		publisher: publisher,
		minSize:   minSize,
		logger:    logger,
	}
}

func (h *Handler) Handle(ctx context.Context, env messages.Envelope) processors.Result {
	shop := env.ShopDomain
	log := h.logger.With("shop", shop, "run_id", env.RunID)

	payload, err := messages.Decode[messages.ExportProducts](env)
	if err != nil {
		return processors.DropWith(err)
	}

	if _, err := h.configs.FindByID(ctx, payload.ConfigID); err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			log.Error("Export: shopify config not found for id %d", payload.ConfigID)
			return processors.DropWith(err)
		}
		log.Error("Export: failed to load config %d: %v", payload.ConfigID, err)
		return processors.RetryWith(err)
	}

	path, err := h.exporter.Export(ctx, shop, payload.SalesChannelID, payload.Locale)
	if err != nil {
		var expired *shopify.ExpiredCredentialError
		switch {
		case errors.As(err, &expired):
			log.Error("Export: access token expired, shop has to reauthorize: %v", err)
			return processors.FailWith(err)
		case errors.Is(err, repository.ErrTokenNotFound):
			log.Error("Export: no access token stored for shop")
			return processors.DropWith(err)
		}
		log.Error("Export file cannot be created. Error: %v", err)
		return processors.RetryWith(err)
	}

	if err := factfinder.CheckSize(path, h.minSize); err != nil {
		log.Error("Exported file too small, problem with product export: %v", err)
		os.Remove(path)
		return processors.RetryWith(err)
	}

	next, err := messages.New(env.RunID, messages.TypeUploadFile, shop, messages.UploadFile{
		ConfigID:          payload.ConfigID,
		FilePath:          path,
		NotificationEmail: payload.NotificationEmail,
	})
	if err != nil {
		return processors.RetryWith(err)
	}
	if err := h.publisher.Publish(ctx, next); err != nil {
		log.Error("Export: failed to queue upload: %v", err)
		return processors.RetryWith(fmt.Errorf("queue upload: %w", err))
	}

	log.Info("Shopify export file created successfully: %s", path)
	return processors.Ok()
}
