package memory

import (
	"context"

	"workshop/domain/shared"
)

// UnitOfWork runs fn while holding the store lock and restores the
// snapshot when fn fails. Events of registered aggregates are pulled only
// after a successful run.
type UnitOfWork struct {
	store      *Store
	aggregates []shared.AggregateRoot
	committed  []shared.DomainEvent
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.aggregates = u.aggregates[:0]
	u.committed = nil

	if err := ctx.Err(); err != nil {
		return err
	}

	txCtx, commit, rollback := u.store.begin(ctx)
	done := false
	// A panicking fn must not leave the store locked or half-written.
	defer func() {
		if !done {
			rollback()
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}

	var events []shared.DomainEvent
	for _, agg := range u.aggregates {
		events = append(events, agg.PullEvents()...)
	}
	done = true
	commit()
	u.committed = events
	return nil
}

func (u *UnitOfWork) track(agg shared.AggregateRoot) { u.aggregates = append(u.aggregates, agg) }

func (u *UnitOfWork) RegisterNew(agg shared.AggregateRoot)     { u.track(agg) }
func (u *UnitOfWork) RegisterDirty(agg shared.AggregateRoot)   { u.track(agg) }
func (u *UnitOfWork) RegisterRemoved(agg shared.AggregateRoot) { u.track(agg) }

func (u *UnitOfWork) CommittedEvents() []shared.DomainEvent { return u.committed }

var _ shared.UnitOfWork = (*UnitOfWork)(nil)

type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.store)
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
