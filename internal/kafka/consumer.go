package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/segmentio/kafka-go"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader MessageReader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return NewConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}))
}

func NewConsumerWithReader(reader MessageReader) *Consumer {
	return &Consumer{reader: reader}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads until ctx is done or handler fails. A cancelled context ends
// the loop with a nil error.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// BookingEventHandler decodes booking events and passes them on. Messages
// that do not decode are logged and skipped.
func BookingEventHandler(next func(context.Context, BookingEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logging.Warn("skipping undecodable booking event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			return nil
		}
		return next(ctx, event)
	}
}
