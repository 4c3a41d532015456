package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffbridge_worker_messages_processed_total",
		Help: "Work items processed, by type and result",
	}, []string{"type", "result"})

	messageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ffbridge_worker_message_processing_duration_seconds",
		Help:    "Time spent in stage handlers",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"type"})

	messagesRedelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffbridge_worker_redeliveries_total",
		Help: "Work items queued again after a retryable failure",
	}, []string{"type"})

	retriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ffbridge_worker_failures_total",
		Help: "Work items that failed for good",
	}, []string{"type"})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ffbridge_worker_active_goroutines",
		Help: "Handlers currently running",
	})
)
