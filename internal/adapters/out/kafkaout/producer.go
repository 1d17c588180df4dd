// Package kafkaout implements the event publisher port on Kafka. The outbox
// dispatcher decides delivery by the returned error, so writes here are
// synchronous: a message is acked by the brokers or the dispatch fails.
package kafkaout

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"fulfillment/internal/pkg/errs"
)

// Producer publishes order status events onto one topic, partitioned by
// order id so per-order event ordering survives.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}, nil
}

// Publish writes one event keyed by order id.
func (p *Producer) Publish(ctx context.Context, key string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
}

// Close flushes and shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
