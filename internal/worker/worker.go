package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"ffbridge/internal/config"
	"ffbridge/internal/logger"
	"ffbridge/internal/worker/messages"

	"github.com/segmentio/kafka-go"
)

// Worker consumes the pipeline topic with a pool of group readers. Each
// reader handles one message at a time and commits it after delivery.
type Worker struct {
	config     *config.Config
	logger     *logger.Logger
	readers    []*kafka.Reader
	dispatcher *Dispatcher
	wg         sync.WaitGroup
}

func New(cfg *config.Config, dispatcher *Dispatcher, logger *logger.Logger) *Worker {
	concurrency := cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	readers := make([]*kafka.Reader, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.KafkaBrokers,
			GroupID:        cfg.KafkaGroupID,
			Topic:          cfg.KafkaTopic,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			MaxWait:        time.Second,
			CommitInterval: 0,
		}))
	}

	return &Worker{
		config:     cfg,
		logger:     logger,
		readers:    readers,
		dispatcher: dispatcher,
	}
}

// Start blocks until ctx is cancelled and every reader has returned.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started with %d readers on topic %s", len(w.readers), w.config.KafkaTopic)

	for i, reader := range w.readers {
		w.wg.Add(1)
		go func(id int, reader *kafka.Reader) {
			defer w.wg.Done()
			w.consume(ctx, id, reader)
		}(i, reader)
	}
	w.wg.Wait()
}

func (w *Worker) consume(ctx context.Context, id int, reader *kafka.Reader) {
	for {
		message, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				w.logger.Debug("Reader %d stopped", id)
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message at offset %d: %s", message.Offset, string(message.Value))

		var env messages.Envelope
		if err := json.Unmarshal(message.Value, &env); err != nil {
			w.logger.Error("Failed to parse work item: %v", err)
			messagesProcessed.WithLabelValues("unknown", "drop").Inc()
		} else if err := w.dispatcher.Deliver(ctx, env); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to deliver work item %s: %v", env.ID, err)
		}

		if err := reader.CommitMessages(ctx, message); err != nil {
			w.logger.Error("Failed to commit offset %d: %v", message.Offset, err)
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	for _, reader := range w.readers {
		if err := reader.Close(); err != nil {
			w.logger.Warn("Failed to close reader: %v", err)
		}
	}
}
