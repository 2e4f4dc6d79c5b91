// Package messaging relays outbox rows to a broker and fans committed domain
// events out to in-process handlers.
package messaging

import (
	"context"
	"time"

	"workshop/pkg/logger"

	"go.uber.org/zap"
)

// Message is one outbox row on its way to the broker.
type Message struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	OccurredOn  time.Time
}

// Publisher delivers messages. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// LoggingPublisher writes messages to the log. Used when no broker is configured.
type LoggingPublisher struct{}

func (LoggingPublisher) Publish(ctx context.Context, msgs ...Message) error {
	for _, m := range msgs {
		logger.Ctx(ctx).Info("outbox event published",
			zap.String("event_id", m.ID),
			zap.String("event_type", m.EventType),
			zap.String("aggregate_id", m.AggregateID),
			zap.ByteString("payload", m.Payload))
	}
	return nil
}

func (LoggingPublisher) Close() error { return nil }
