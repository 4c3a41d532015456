package processors

import (
	"context"
	"fmt"

	"ffbridge/internal/logger"
	"ffbridge/internal/status"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors/validation"
)

var stageStates = map[messages.Type]status.State{
	messages.TypeExportProducts: status.StateExporting,
	messages.TypeUploadFile:     status.StateUploading,
	messages.TypePushImport:     status.StateImporting,
}

// EventProcessor routes work items to the handler registered for their type
// and keeps the run tracker up to date.
type EventProcessor struct {
	handlers  map[messages.Type]Handler
	validator *validation.Validator
	tracker   status.Tracker
	logger    *logger.Logger
}

func NewEventProcessor(tracker status.Tracker, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		handlers:  make(map[messages.Type]Handler),
		validator: validation.New(logger),
		tracker:   tracker,
		logger:    logger,
	}
}

func (ep *EventProcessor) Register(typ messages.Type, h Handler) {
	ep.handlers[typ] = h
}

func (ep *EventProcessor) Process(ctx context.Context, env messages.Envelope) Result {
	log := ep.logger.With("message_id", env.ID, "shop", env.ShopDomain, "stage", string(env.Type))

	h, ok := ep.handlers[env.Type]
	if !ok {
		log.Warn("No handler for work item type %q", env.Type)
		return DropWith(fmt.Errorf("unknown work item type %q", env.Type))
	}

	if err := ep.validator.Validate(env); err != nil {
		log.Error("Invalid work item: %v", err)
		ep.track(ctx, env, status.StateFailed, err)
		return DropWith(err)
	}

	if state, ok := stageStates[env.Type]; ok {
		ep.track(ctx, env, state, nil)
	}

	log.Debug("Processing work item (attempt %d)", env.Attempt)
	res := h.Handle(ctx, env)

	switch {
	case res.Kind == Drop:
		ep.track(ctx, env, status.StateFailed, res.Err)
	case res.Kind == Success && env.Type == messages.TypeSendNotification:
		if n, err := messages.Decode[messages.SendNotification](env); err == nil && n.Status == "success" {
			ep.track(ctx, env, status.StateNotified, nil)
		}
	case res.Kind == Success && env.Type == messages.TypePushImport:
		// Runs without a recipient end here; no mail follows.
		if p, err := messages.Decode[messages.PushImport](env); err == nil && p.NotificationEmail == "" {
			ep.track(ctx, env, status.StateCompleted, nil)
		}
	}
	return res
}

func (ep *EventProcessor) track(ctx context.Context, env messages.Envelope, state status.State, err error) {
	if env.RunID == "" {
		return
	}
	run := status.Run{
		ID:         env.RunID,
		Shop:       env.ShopDomain,
		State:      state,
		RetryCount: env.Attempt,
	}
	if state == status.StateFailed {
		run.Stage = string(env.Type)
	}
	if err != nil {
		run.Error = err.Error()
	}
	if err := ep.tracker.Set(ctx, run); err != nil {
		ep.logger.Warn("Failed to record run %s state %s: %v", env.RunID, state, err)
	}
}
