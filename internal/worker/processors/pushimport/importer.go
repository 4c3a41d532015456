package pushimport

import (
	"context"
	"errors"
	"fmt"

	"ffbridge/internal/logger"
	"ffbridge/internal/models"
	"ffbridge/internal/repository"
	"ffbridge/internal/services/factfinder"
	"ffbridge/internal/services/notification"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
)

type Importer interface {
	Execute(ctx context.Context, cfg *models.ShopConfig) error
}

// Handler triggers the FactFinder imports and queues the success mail.
type Handler struct {
	configs   processors.ConfigFinder
	importer  Importer
	publisher messages.Publisher
	logger    *logger.Logger
}

func New(configs processors.ConfigFinder, importer Importer, publisher messages.Publisher, logger *logger.Logger) *Handler {
	return &Handler{
		configs:   configs,
		importer:  importer,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *Handler) Handle(ctx context.Context, env messages.Envelope) processors.Result {
	log := h.logger.With("shop", env.ShopDomain, "run_id", env.RunID)

	payload, err := messages.Decode[messages.PushImport](env)
	if err != nil {
		return processors.DropWith(err)
	}

	cfg, err := h.configs.FindByID(ctx, payload.ConfigID)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			log.Error("PushImport: shopify config not found for id %d", payload.ConfigID)
			return processors.DropWith(err)
		}
		return processors.RetryWith(err)
	}

	if err := h.importer.Execute(ctx, cfg); err != nil {
		log.Error("Push import failed: %v", err)
		if errors.Is(err, factfinder.ErrImportAlreadyRunning) {
			return processors.FailWith(err)
		}
		return processors.RetryWith(err)
	}
	log.Info("Push import executed successfully")

	if payload.NotificationEmail == "" {
		return processors.Ok()
	}

	next, err := messages.New(env.RunID, messages.TypeSendNotification, env.ShopDomain, messages.SendNotification{
		Recipient: payload.NotificationEmail,
		Status:    string(notification.StatusSuccess),
	})
	if err != nil {
		return processors.RetryWith(err)
	}
	if err := h.publisher.Publish(ctx, next); err != nil {
		return processors.RetryWith(fmt.Errorf("queue notification: %w", err))
	}
	return processors.Ok()
}
