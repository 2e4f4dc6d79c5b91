package gormstore

import (
	"context"
	"fmt"

	"workshop/domain/shared"
	"workshop/infrastructure/persistence"
	"workshop/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

// UnitOfWork is one database transaction per Execute. Events pulled from the
// registered aggregates go to the outbox inside that transaction and are kept
// for dispatch after commit. Not reusable across operations.
type UnitOfWork struct {
	db     *gorm.DB
	outbox shared.OutboxRepository // nil disables the outbox
	policy retry.Config

	touched   []shared.AggregateRoot
	committed []shared.DomainEvent
}

func NewUnitOfWork(db *gorm.DB, outbox shared.OutboxRepository, policy retry.Config) *UnitOfWork {
	return &UnitOfWork{db: db, outbox: outbox, policy: policy}
}

// Execute may run fn several times on deadlocks, lock timeouts and version
// clashes, so fn must reload everything it reads.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.committed = nil

	return retry.Do(ctx, u.policy, func(ctx context.Context) error {
		u.touched = u.touched[:0]
		var events []shared.DomainEvent

		err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := persistence.ContextWithTx(ctx, tx)
			if err := fn(txCtx); err != nil {
				return err
			}
			for _, agg := range u.touched {
				events = append(events, agg.PullEvents()...)
			}
			return u.stage(txCtx, events)
		})
		if err != nil {
			return err
		}
		u.committed = events
		return nil
	})
}

func (u *UnitOfWork) stage(ctx context.Context, events []shared.DomainEvent) error {
	if u.outbox == nil {
		return nil
	}
	for _, e := range events {
		if err := u.outbox.SaveEvent(ctx, e); err != nil {
			return fmt.Errorf("stage %s in outbox: %w", e.EventName(), err)
		}
	}
	return nil
}

func (u *UnitOfWork) track(agg shared.AggregateRoot) { u.touched = append(u.touched, agg) }

func (u *UnitOfWork) RegisterNew(agg shared.AggregateRoot)     { u.track(agg) }
func (u *UnitOfWork) RegisterDirty(agg shared.AggregateRoot)   { u.track(agg) }
func (u *UnitOfWork) RegisterRemoved(agg shared.AggregateRoot) { u.track(agg) }

func (u *UnitOfWork) CommittedEvents() []shared.DomainEvent { return u.committed }

// UnitOfWorkFactory hands out a fresh UnitOfWork per call.
type UnitOfWorkFactory struct {
	db     *gorm.DB
	outbox shared.OutboxRepository
	policy retry.Config
}

// NewUnitOfWorkFactory builds a factory. Pass a nil outbox to disable it.
func NewUnitOfWorkFactory(db *gorm.DB, outbox shared.OutboxRepository, policy retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db, outbox: outbox, policy: policy}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.db, f.outbox, f.policy)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)
