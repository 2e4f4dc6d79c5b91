package gormstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"workshop/config"
	"workshop/infrastructure/messaging"
	"workshop/infrastructure/persistence/gormstore/po"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxStore struct {
	mu        sync.Mutex
	pending   []*po.OutboxEventPO
	claimed   map[string]bool
	published []string
	failed    []string
}

func (s *fakeOutboxStore) GetPendingEvents(_ context.Context, limit int) ([]*po.OutboxEventPO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeOutboxStore) MarkEventProcessing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[id] {
		return errors.New("already claimed")
	}
	s.claimed[id] = true
	return nil
}

func (s *fakeOutboxStore) MarkEventPublished(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, id)
	return nil
}

func (s *fakeOutboxStore) MarkEventFailed(_ context.Context, id string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, id)
	return nil
}

type recordingPublisher struct {
	failOn string
	sent   []messaging.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...messaging.Message) error {
	for _, m := range msgs {
		if m.EventType == p.failOn {
			return errors.New("broker unavailable")
		}
		p.sent = append(p.sent, m)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func outboxRow(id, eventType string) *po.OutboxEventPO {
	return &po.OutboxEventPO{
		ID:          id,
		AggregateID: "agg-" + id,
		EventType:   eventType,
		Payload:     `{"event_name":"` + eventType + `"}`,
		OccurredOn:  time.Now(),
	}
}

func workerConfig(poll time.Duration) config.WorkerConfig {
	return config.WorkerConfig{PollInterval: poll, BatchSize: 10, MaxRetries: 3}
}

func TestNewOutboxWorker_Validation(t *testing.T) {
	store := &fakeOutboxStore{claimed: map[string]bool{}}
	pub := &recordingPublisher{}

	_, err := NewOutboxWorker(nil, pub, workerConfig(time.Second))
	assert.ErrorContains(t, err, "store is required")
	_, err = NewOutboxWorker(store, nil, workerConfig(time.Second))
	assert.ErrorContains(t, err, "publisher is required")
	_, err = NewOutboxWorker(store, pub, workerConfig(0))
	assert.ErrorContains(t, err, "poll_interval")
	_, err = NewOutboxWorker(store, pub, config.WorkerConfig{PollInterval: time.Second})
	assert.ErrorContains(t, err, "batch_size")
	assert.ErrorContains(t, err, "max_retries")
}

func TestOutboxWorker_ProcessBatch(t *testing.T) {
	store := &fakeOutboxStore{
		claimed: map[string]bool{"e3": true},
		pending: []*po.OutboxEventPO{
			outboxRow("e1", "order_created"),
			outboxRow("e2", "material_balance_changed"),
			outboxRow("e3", "order_updated"),
		},
	}
	pub := &recordingPublisher{failOn: "material_balance_changed"}

	w, err := NewOutboxWorker(store, pub, workerConfig(time.Second))
	require.NoError(t, err)

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"e1"}, store.published)
	assert.Equal(t, []string{"e2"}, store.failed)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "agg-e1", pub.sent[0].AggregateID)
}

func TestOutboxWorker_RunStopsOnCancel(t *testing.T) {
	store := &fakeOutboxStore{claimed: map[string]bool{}}
	w, err := NewOutboxWorker(store, &recordingPublisher{}, workerConfig(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
}
