/*
Package txn runs one application operation in one unit of work.

Storage failures that are not already part of the domain taxonomy come back
wrapped as shared.ErrTransactionFailed. Events collected by the unit of work
are handed to the sink only after commit; sink errors are logged and dropped.
*/
package txn

import (
	"context"

	"workshop/domain/shared"
	"workshop/pkg/logger"

	"go.uber.org/zap"
)

type Runner struct {
	factory shared.UnitOfWorkFactory
	sink    shared.DomainEventPublisher
}

// NewRunner accepts a nil sink, in which case committed events are dropped.
func NewRunner(factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher) *Runner {
	return &Runner{factory: factory, sink: sink}
}

// Run executes fn in a fresh unit of work. fn may be called more than once
// when the unit of work retries, so it must reload what it touches.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context, uow shared.UnitOfWork) error) error {
	uow := r.factory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		return fn(ctx, uow)
	})
	if err != nil {
		if !shared.IsDomainError(err) {
			return shared.NewTransactionFailedError(err)
		}
		return err
	}

	r.dispatch(ctx, uow.CommittedEvents())
	return nil
}

func (r *Runner) dispatch(ctx context.Context, events []shared.DomainEvent) {
	if r.sink == nil {
		return
	}
	for _, event := range events {
		if err := r.sink.Publish(event); err != nil {
			logger.Ctx(ctx).Warn("event dispatch failed",
				zap.String("event", event.EventName()),
				zap.String("aggregate_id", event.GetAggregateID()),
				zap.Error(err))
		}
	}
}
