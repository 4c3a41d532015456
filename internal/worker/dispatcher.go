package worker

import (
	"context"
	"time"

	"ffbridge/internal/logger"
	"ffbridge/internal/worker/messages"
	"ffbridge/internal/worker/processors"
)

type Processor interface {
	Process(ctx context.Context, env messages.Envelope) processors.Result
}

// FailureEvent describes a failed delivery. RetryCount is the number of
// redeliveries that had already happened before this failure.
type FailureEvent struct {
	Envelope   messages.Envelope
	RetryCount int
	Err        error
	WillRetry  bool
}

type FailureObserver interface {
	OnFailure(ctx context.Context, ev FailureEvent)
}

// Dispatcher runs a work item through the processor and owns the decision to
// redeliver it.
type Dispatcher struct {
	processor  Processor
	publisher  messages.Publisher
	observers  []FailureObserver
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(processor Processor, publisher messages.Publisher, maxRetries int, retryDelay time.Duration, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		processor:  processor,
		publisher:  publisher,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (d *Dispatcher) Subscribe(o FailureObserver) {
	d.observers = append(d.observers, o)
}

// Deliver processes env once. A retryable failure is published again after a
// backoff of retryDelay doubled per previous attempt, until maxRetries
// redeliveries have been made. Observers see WillRetry only once the
// redelivery is queued; when queueing fails the failure is reported as final
// and the publish error is returned.
func (d *Dispatcher) Deliver(ctx context.Context, env messages.Envelope) error {
	typ := string(env.Type)
	start := time.Now()
	activeWorkers.Inc()
	res := d.processor.Process(ctx, env)
	activeWorkers.Dec()
	messageProcessingDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
	messagesProcessed.WithLabelValues(typ, res.Kind.String()).Inc()

	log := d.logger.With("message_id", env.ID, "run_id", env.RunID, "shop", env.ShopDomain)

	switch res.Kind {
	case processors.Success:
		log.Debug("%s processed successfully", typ)
		return nil

	case processors.Drop:
		log.Warn("%s dropped: %v", typ, res.Err)
		return nil

	case processors.Fail:
		log.Error("%s failed without retry: %v", typ, res.Err)
		retriesExhausted.WithLabelValues(typ).Inc()
		d.notify(ctx, FailureEvent{Envelope: env, RetryCount: env.Attempt, Err: res.Err})
		return nil
	}

	if env.Attempt >= d.maxRetries {
		log.Info("Max retries reached for %s: %v", typ, res.Err)
		retriesExhausted.WithLabelValues(typ).Inc()
		d.notify(ctx, FailureEvent{Envelope: env, RetryCount: env.Attempt, Err: res.Err})
		return nil
	}

	delay := d.backoff(env.Attempt)
	log.Warn("%s failed (attempt %d), retrying in %s: %v", typ, env.Attempt+1, delay, res.Err)
	if err := d.sleep(ctx, delay); err != nil {
		return err
	}

	if err := d.publisher.Publish(ctx, env.Redelivery()); err != nil {
		if ctx.Err() != nil {
			return err
		}
		// The offset is committed anyway, so the item fails for good here.
		log.Error("Failed to redeliver %s: %v", typ, err)
		retriesExhausted.WithLabelValues(typ).Inc()
		d.notify(ctx, FailureEvent{Envelope: env, RetryCount: env.Attempt, Err: res.Err})
		return err
	}
	messagesRedelivered.WithLabelValues(typ).Inc()
	d.notify(ctx, FailureEvent{Envelope: env, RetryCount: env.Attempt, Err: res.Err, WillRetry: true})
	return nil
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.retryDelay << attempt
}

func (d *Dispatcher) notify(ctx context.Context, ev FailureEvent) {
	for _, o := range d.observers {
		o.OnFailure(ctx, ev)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
