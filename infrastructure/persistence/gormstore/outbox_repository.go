package gormstore

import (
	"context"
	"fmt"

	"workshop/domain/shared"
	"workshop/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
)

// OutboxRepository stores events next to the state change that produced them
// and lets the relay walk them through PENDING, PROCESSING and PUBLISHED.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// SaveEvent writes in the transaction carried by ctx, if there is one.
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return err
	}
	row, err := po.FromDomainEvent(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	return getDB(ctx, r.db).Create(row).Error
}

// GetPendingEvents returns up to limit pending rows, oldest first.
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var rows []*po.OutboxEventPO
	err := getDB(ctx, r.db).
		Where("status = ?", po.EventStatusPending).
		Order("created_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load pending outbox events: %w", err)
	}
	return rows, nil
}

// transition moves one row to status to. A non-empty from guards the move;
// zero affected rows means somebody else changed it first.
func (r *OutboxRepository) transition(ctx context.Context, id string, from, to po.EventStatus) error {
	q := getDB(ctx, r.db).Model(&po.OutboxEventPO{}).Where("id = ?", id)
	if from != "" {
		q = q.Where("status = ?", from)
	}
	res := q.Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("outbox event %s: no row in state %q", id, from)
	}
	return nil
}

// MarkEventProcessing claims a pending event for this relay.
func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) error {
	return r.transition(ctx, eventID, po.EventStatusPending, po.EventStatusProcessing)
}

func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	return r.transition(ctx, eventID, "", po.EventStatusPublished)
}

// MarkEventFailed returns the event to PENDING until it has failed maxRetries
// times, then parks it as FAILED.
func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var row po.OutboxEventPO
		if err := tx.Select("retry_count").First(&row, "id = ?", eventID).Error; err != nil {
			return fmt.Errorf("outbox event %s: %w", eventID, err)
		}
		next := po.EventStatusPending
		if row.RetryCount+1 >= maxRetries {
			next = po.EventStatusFailed
		}
		return tx.Model(&po.OutboxEventPO{}).Where("id = ?", eventID).
			Updates(map[string]any{"status": next, "retry_count": row.RetryCount + 1}).Error
	})
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
