package messaging

import (
	"workshop/domain/shared"
	"workshop/pkg/logger"

	"go.uber.org/zap"
)

// LogEventHandler logs every committed domain event. It is subscribed to the
// wildcard topic of the in-process event bus.
type LogEventHandler struct {
	log *zap.Logger
}

func NewLogEventHandler() *LogEventHandler {
	return &LogEventHandler{log: logger.Get().Named("events")}
}

func (h *LogEventHandler) Handle(event shared.DomainEvent) error {
	h.log.Info("domain event",
		zap.String("event", event.EventName()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Time("occurred_on", event.OccurredOn()),
		zap.Any("payload", event.Payload()))
	return nil
}

func (h *LogEventHandler) Name() string { return "log" }

var _ shared.EventHandler = (*LogEventHandler)(nil)
