package shared

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// DomainEvent is something that happened in the domain.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string

	// Payload returns the public fields of the affected entity.
	Payload() map[string]any
}

// DomainEventPublisher is the sink events are dispatched to after commit.
type DomainEventPublisher interface {
	Publish(event DomainEvent) error
	Subscribe(eventName string, handler EventHandler) error
	Unsubscribe(eventName string, handler EventHandler) error
}

type EventHandler interface {
	Handle(event DomainEvent) error
	Name() string
}

// WildcardEvent subscribes a handler to every event name.
const WildcardEvent = "*"

var ErrMalformedEvent = errors.New("malformed event")

// BaseEvent carries the common event fields; concrete events embed it.
type BaseEvent struct {
	name        string
	aggregateID string
	occurredOn  time.Time
	payload     map[string]any
}

func NewBaseEvent(name, aggregateID string, payload map[string]any) BaseEvent {
	return BaseEvent{name: name, aggregateID: aggregateID, occurredOn: time.Now(), payload: payload}
}

func (e BaseEvent) EventName() string       { return e.name }
func (e BaseEvent) OccurredOn() time.Time   { return e.occurredOn }
func (e BaseEvent) GetAggregateID() string  { return e.aggregateID }
func (e BaseEvent) Payload() map[string]any { return maps.Clone(e.payload) }

// ValidateEvent rejects events that cannot be routed or stored.
func ValidateEvent(event DomainEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: nil", ErrMalformedEvent)
	case event.EventName() == "":
		return fmt.Errorf("%w: no name", ErrMalformedEvent)
	case event.GetAggregateID() == "":
		return fmt.Errorf("%w: %s has no aggregate id", ErrMalformedEvent, event.EventName())
	case event.OccurredOn().IsZero():
		return fmt.Errorf("%w: %s has no timestamp", ErrMalformedEvent, event.EventName())
	}
	return nil
}

// EventBus is the in-process DomainEventPublisher. Handlers run synchronously
// in subscription order, exact-name subscribers before wildcard ones. A failing
// handler does not stop the others.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

func (b *EventBus) Publish(event DomainEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	b.mu.RLock()
	targets := slices.Concat(b.handlers[event.EventName()], b.handlers[WildcardEvent])
	b.mu.RUnlock()

	var errs []error
	for _, h := range targets {
		if err := h.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", h.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("publish %s: %w", event.EventName(), errors.Join(errs...))
	}
	return nil
}

// Subscribe registers handler under eventName. Handler names are unique per event.
func (b *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" || handler == nil {
		return errors.New("subscribe: event name and handler are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if slices.ContainsFunc(b.handlers[eventName], sameName(handler)) {
		return fmt.Errorf("handler %s already subscribed to %s", handler.Name(), eventName)
	}
	b.handlers[eventName] = append(b.handlers[eventName], handler)
	return nil
}

func (b *EventBus) Unsubscribe(eventName string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventName] = slices.DeleteFunc(b.handlers[eventName], sameName(handler))
	return nil
}

func sameName(handler EventHandler) func(EventHandler) bool {
	return func(h EventHandler) bool { return h.Name() == handler.Name() }
}
