package processors

import (
	"context"

	"ffbridge/internal/models"
	"ffbridge/internal/worker/messages"
)

// Kind tells the worker what to do with a work item after its handler ran.
type Kind int

const (
	// Success means the stage finished and the item can be acknowledged.
	Success Kind = iota
	// Retry asks for redelivery with backoff while the retry budget lasts.
	Retry
	// Fail ends the run without retrying.
	Fail
	// Drop discards the item. Nothing downstream is told.
	Drop
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Fail:
		return "fail"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

type Result struct {
	Kind Kind
	Err  error
}

func Ok() Result {
	return Result{Kind: Success}
}

func RetryWith(err error) Result {
	return Result{Kind: Retry, Err: err}
}

func FailWith(err error) Result {
	return Result{Kind: Fail, Err: err}
}

func DropWith(err error) Result {
	return Result{Kind: Drop, Err: err}
}

// Handler runs one pipeline stage for a work item.
type Handler interface {
	Handle(ctx context.Context, env messages.Envelope) Result
}

type HandlerFunc func(ctx context.Context, env messages.Envelope) Result

func (f HandlerFunc) Handle(ctx context.Context, env messages.Envelope) Result {
	return f(ctx, env)
}

// ConfigFinder loads a shop configuration with its secrets decrypted.
type ConfigFinder interface {
	FindByID(ctx context.Context, id uint) (*models.ShopConfig, error)
}
