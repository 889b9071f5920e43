package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"salvo-backend/internal/model"
)

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewReader creates a consumer-group reader with periodic offset commits.
func NewReader(broker, topic, groupID string) *kafka.Reader {
	if topic == "" {
		topic = DefaultTopic
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// Handler processes one decoded search event.
type Handler func(ctx context.Context, evt model.SearchPerformed) error

// Consume reads search events until ctx is done or the reader fails.
// Undecodable messages and handler errors are logged and skipped.
func Consume(ctx context.Context, r MessageReader, log zerolog.Logger, handle Handler) error {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var evt model.SearchPerformed
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable search event")
			continue
		}

		if err := handle(ctx, evt); err != nil {
			log.Error().Err(err).Str("interaction_id", evt.InteractionID).Msg("search event handler failed")
		}
	}
}
