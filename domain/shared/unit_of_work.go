package shared

import "context"

// UnitOfWork manages a transaction boundary and the events of the aggregates
// touched inside it.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)

	// CommittedEvents returns the events pulled during the last successful Execute.
	CommittedEvents() []DomainEvent
}

// UnitOfWorkFactory hands out a fresh UnitOfWork per operation.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}

// PasswordHasher is supplied by infrastructure; the domain only stores digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}
