package gormstore

import (
	"context"
	"errors"
	"time"

	"workshop/config"
	"workshop/infrastructure/messaging"
	"workshop/infrastructure/persistence/gormstore/po"
	"workshop/pkg/logger"

	"go.uber.org/zap"
)

// OutboxStore is the part of OutboxRepository the relay needs.
type OutboxStore interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*po.OutboxEventPO, error)
	MarkEventProcessing(ctx context.Context, eventID string) error
	MarkEventPublished(ctx context.Context, eventID string) error
	MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error
}

// OutboxWorker relays committed events from the outbox table to a publisher.
// Delivery is at least once: a crash between publish and MarkEventPublished
// leaves the row in PROCESSING for an operator to requeue.
type OutboxWorker struct {
	store     OutboxStore
	publisher messaging.Publisher
	cfg       config.WorkerConfig
}

func NewOutboxWorker(store OutboxStore, publisher messaging.Publisher, cfg config.WorkerConfig) (*OutboxWorker, error) {
	var errs []error
	if store == nil {
		errs = append(errs, errors.New("outbox store is required"))
	}
	if publisher == nil {
		errs = append(errs, errors.New("publisher is required"))
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, errors.New("worker.poll_interval must be positive"))
	}
	if cfg.BatchSize <= 0 {
		errs = append(errs, errors.New("worker.batch_size must be positive"))
	}
	if cfg.MaxRetries <= 0 {
		errs = append(errs, errors.New("worker.max_retries must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &OutboxWorker{store: store, publisher: publisher, cfg: cfg}, nil
}

// Run drains a batch every poll interval until ctx is done.
func (w *OutboxWorker) Run(ctx context.Context) error {
	tick := time.NewTicker(w.cfg.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
		if _, err := w.ProcessBatch(ctx); err != nil {
			logger.Error("outbox batch failed", zap.Error(err))
		}
	}
}

// ProcessBatch relays one batch and returns how many events were published.
// Per-event failures are logged and do not fail the batch.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := w.store.GetPendingEvents(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if w.relay(ctx, row) {
			published++
		}
	}
	return published, nil
}

func (w *OutboxWorker) relay(ctx context.Context, row *po.OutboxEventPO) bool {
	log := logger.Ctx(ctx).With(zap.String("event_id", row.ID), zap.String("event_type", row.EventType))

	if err := w.store.MarkEventProcessing(ctx, row.ID); err != nil {
		log.Debug("outbox event claimed elsewhere", zap.Error(err))
		return false
	}

	err := w.publisher.Publish(ctx, messaging.Message{
		ID:          row.ID,
		AggregateID: row.AggregateID,
		EventType:   row.EventType,
		Payload:     []byte(row.Payload),
		OccurredOn:  row.OccurredOn,
	})
	if err != nil {
		log.Warn("outbox publish failed", zap.Error(err))
		if err := w.store.MarkEventFailed(ctx, row.ID, w.cfg.MaxRetries); err != nil {
			log.Error("outbox event not requeued", zap.Error(err))
		}
		return false
	}

	if err := w.store.MarkEventPublished(ctx, row.ID); err != nil {
		log.Error("outbox event published but not marked", zap.Error(err))
		return false
	}
	return true
}
