package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ffbridge/internal/worker/messages"

	"github.com/segmentio/kafka-go"
)

// KafkaTransport publishes work items to the pipeline topic. Messages are
// keyed by shop so one shop's items land on the same partition.
type KafkaTransport struct {
	writer *kafka.Writer
}

func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	return &KafkaTransport{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (t *KafkaTransport) Publish(ctx context.Context, env messages.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode work item: %w", err)
	}

	return t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.ShopDomain),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(env.Type)},
		},
	})
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
