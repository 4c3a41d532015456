package worker

import (
	"context"
	"os"

	"ffbridge/internal/logger"
	"ffbridge/internal/services/notification"
	"ffbridge/internal/status"
	"ffbridge/internal/worker/messages"
)

// FailureNotifier queues the failure mail once a pipeline item has failed for
// good and carries a notification address.
type FailureNotifier struct {
	publisher messages.Publisher
	logger    *logger.Logger
}

func NewFailureNotifier(publisher messages.Publisher, logger *logger.Logger) *FailureNotifier {
	return &FailureNotifier{publisher: publisher, logger: logger}
}

func (n *FailureNotifier) OnFailure(ctx context.Context, ev FailureEvent) {
	if ev.WillRetry || ev.Envelope.Type == messages.TypeSendNotification {
		return
	}

	recipient := messages.FailureRecipient(ev.Envelope)
	if recipient == "" {
		return
	}

	n.logger.Info("Max retries reached, dispatching failure notification email for %s", ev.Envelope.ShopDomain)
	env, err := messages.New(ev.Envelope.RunID, messages.TypeSendNotification, ev.Envelope.ShopDomain, messages.SendNotification{
		Recipient: recipient,
		Status:    string(notification.StatusFailure),
	})
	if err == nil {
		err = n.publisher.Publish(ctx, env)
	}
	if err != nil {
		n.logger.Error("Failed to dispatch failure notification for %s: %v", ev.Envelope.ShopDomain, err)
	}
}

// ExportFileCleanup deletes the local feed file when its upload has failed
// for good.
type ExportFileCleanup struct {
	logger *logger.Logger
}

func NewExportFileCleanup(logger *logger.Logger) *ExportFileCleanup {
	return &ExportFileCleanup{logger: logger}
}

func (c *ExportFileCleanup) OnFailure(_ context.Context, ev FailureEvent) {
	if ev.WillRetry || ev.Envelope.Type != messages.TypeUploadFile {
		return
	}

	payload, err := messages.Decode[messages.UploadFile](ev.Envelope)
	if err != nil || payload.FilePath == "" {
		return
	}
	if err := os.Remove(payload.FilePath); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("Failed to remove export file %s: %v", payload.FilePath, err)
	}
}

// StatusRecorder marks the run as failed on every failed delivery.
type StatusRecorder struct {
	tracker status.Tracker
	logger  *logger.Logger
}

func NewStatusRecorder(tracker status.Tracker, logger *logger.Logger) *StatusRecorder {
	return &StatusRecorder{tracker: tracker, logger: logger}
}

func (r *StatusRecorder) OnFailure(ctx context.Context, ev FailureEvent) {
	env := ev.Envelope
	if env.RunID == "" || env.Type == messages.TypeSendNotification {
		return
	}

	run := status.Run{
		ID:         env.RunID,
		Shop:       env.ShopDomain,
		State:      status.StateFailed,
		Stage:      string(env.Type),
		RetryCount: ev.RetryCount,
	}
	if ev.Err != nil {
		run.Error = ev.Err.Error()
	}
	if err := r.tracker.Set(ctx, run); err != nil {
		r.logger.Warn("Failed to record failure of run %s: %v", env.RunID, err)
	}
}
