package txn

import (
	"context"
	"errors"
	"testing"

	"workshop/domain/material"
	"workshop/domain/shared"
	"workshop/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	names []string
	err   error
}

func (s *recordingSink) Subscribe(string, shared.EventHandler) error   { return nil }
func (s *recordingSink) Unsubscribe(string, shared.EventHandler) error { return nil }

func (s *recordingSink) Publish(event shared.DomainEvent) error {
	s.names = append(s.names, event.EventName())
	return s.err
}

func TestRunner_DispatchesAfterCommit(t *testing.T) {
	store := memory.NewStore()
	sink := &recordingSink{}
	runner := NewRunner(memory.NewUnitOfWorkFactory(store), sink)

	err := runner.Run(context.Background(), func(ctx context.Context, uow shared.UnitOfWork) error {
		m, err := material.NewMaterial("silver 925", 900, 3)
		if err != nil {
			return err
		}
		uow.RegisterNew(m)
		return memory.NewMaterialRepository(store).Save(ctx, m)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{material.EventMaterialCreated}, sink.names)
}

func TestRunner_NoEventsOnFailure(t *testing.T) {
	sink := &recordingSink{}
	runner := NewRunner(memory.NewUnitOfWorkFactory(memory.NewStore()), sink)

	err := runner.Run(context.Background(), func(ctx context.Context, uow shared.UnitOfWork) error {
		m, _ := material.NewMaterial("silver 925", 900, 3)
		uow.RegisterNew(m)
		return material.NewInsufficientBalanceError(m.ID(), 5, 3)
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.Empty(t, sink.names)
}

func TestRunner_WrapsStorageErrors(t *testing.T) {
	runner := NewRunner(memory.NewUnitOfWorkFactory(memory.NewStore()), nil)
	cause := errors.New("connection reset")

	err := runner.Run(context.Background(), func(context.Context, shared.UnitOfWork) error {
		return cause
	})
	assert.ErrorIs(t, err, shared.ErrTransactionFailed)
	assert.ErrorIs(t, err, cause)
}

func TestRunner_SinkErrorsAreSwallowed(t *testing.T) {
	store := memory.NewStore()
	sink := &recordingSink{err: errors.New("handler down")}
	runner := NewRunner(memory.NewUnitOfWorkFactory(store), sink)

	err := runner.Run(context.Background(), func(ctx context.Context, uow shared.UnitOfWork) error {
		m, _ := material.NewMaterial("gold 585", 4200, 1)
		uow.RegisterNew(m)
		return memory.NewMaterialRepository(store).Save(ctx, m)
	})
	assert.NoError(t, err)
	assert.Len(t, sink.names, 1)
}
