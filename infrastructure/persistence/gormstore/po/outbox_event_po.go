package po

import (
	"encoding/json"
	"time"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

// OutboxEventPO is a domain event written in the same transaction as the state change.
type OutboxEventPO struct {
	ID          string      `gorm:"primaryKey;size:64"`
	AggregateID string      `gorm:"size:64;index;not null"`
	EventType   string      `gorm:"size:100;index;not null"`
	Payload     string      `gorm:"type:text;not null"`
	Status      EventStatus `gorm:"size:20;default:PENDING;not null;index:idx_outbox_status_created"`
	RetryCount  int         `gorm:"default:0;not null"`
	OccurredOn  time.Time   `gorm:"not null"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index:idx_outbox_status_created"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// EventEnvelope is the JSON stored in Payload and sent to the broker.
type EventEnvelope struct {
	EventName   string         `json:"event_name"`
	AggregateID string         `json:"aggregate_id"`
	OccurredOn  time.Time      `json:"occurred_on"`
	Data        map[string]any `json:"data"`
}

func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	payload, err := json.Marshal(EventEnvelope{
		EventName:   event.EventName(),
		AggregateID: event.GetAggregateID(),
		OccurredOn:  event.OccurredOn(),
		Data:        event.Payload(),
	})
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &OutboxEventPO{
		ID:          id.String(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     string(payload),
		Status:      EventStatusPending,
		OccurredOn:  event.OccurredOn(),
	}, nil
}
