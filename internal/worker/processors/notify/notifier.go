package notify

import (
	"context"

	"ffbridge/internal/logger"
	"ffbridge/internal/services/notification"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
)

type Notifier interface {
	Notify(ctx context.Context, recipient string, status notification.Status) error
}

// Handler sends the outcome mail. Delivery errors are retried on their own
// budget, independent of the export run.
type Handler struct {
	notifier Notifier
	logger   *logger.Logger
}

func New(notifier Notifier, logger *logger.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		logger:   logger,
	}
}

func (h *Handler) Handle(ctx context.Context, env messages.Envelope) processors.Result {
	payload, err := messages.Decode[messages.SendNotification](env)
	if err != nil {
		return processors.DropWith(err)
	}

	if err := h.notifier.Notify(ctx, payload.Recipient, notification.Status(payload.Status)); err != nil {
		h.logger.Error("Failed to send notification e-mail for %s: %v", env.ShopDomain, err)
		return processors.RetryWith(err)
	}
	return processors.Ok()
}
