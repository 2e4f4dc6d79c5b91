package shared

// AggregateRoot is the entry point of a consistency boundary.
// Aggregates record domain events while their state changes; the unit of work
// pulls them inside the transaction and hands them on after commit.
type AggregateRoot interface {
	// ID returns the globally unique identifier.
	ID() string

	// Version returns the optimistic lock version (0 for aggregates that do not use one).
	Version() int

	// PullEvents returns and clears the recorded events.
	PullEvents() []DomainEvent
}

// IsAggregateRoot is a compile-time marker.
//
//	var _ = IsAggregateRoot(&Order{})
func IsAggregateRoot(agg AggregateRoot) AggregateRoot {
	return agg
}

// Entity is an object identified by its ID rather than its attributes.
type Entity interface {
	ID() string
}

// EventRecorder is embedded by aggregates to collect domain events.
type EventRecorder struct {
	events []DomainEvent
}

// Record appends an event.
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// PullEvents returns a copy of the recorded events and clears the list.
func (r *EventRecorder) PullEvents() []DomainEvent {
	events := make([]DomainEvent, len(r.events))
	copy(events, r.events)
	r.events = nil
	return events
}
