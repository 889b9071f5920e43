// Package kstream moves search events through Kafka using segmentio/kafka-go.
package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"salvo-backend/internal/model"
)

// DefaultTopic carries model.SearchPerformed events.
const DefaultTopic = "salvo.search.events"

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter constructs an async producer for topic.
func NewWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Publisher sends search events to Kafka. It satisfies analytics.Publisher.
type Publisher struct {
	w MessageWriter
}

// NewPublisher publishes to topic on broker.
func NewPublisher(broker, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{w: NewWriter(broker, topic)}
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish keys the message by phone so one user's searches stay on one
// partition, in order.
func (p *Publisher) Publish(ctx context.Context, evt model.SearchPerformed) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encode search event")
	}

	msg := kafka.Message{
		Key:   []byte(evt.Phone),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "publish search event")
	}
	return nil
}

// Close flushes pending async writes.
func (p *Publisher) Close() error {
	return p.w.Close()
}
