package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"workshop/config"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)
	occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(),
		Message{ID: "e1", AggregateID: "order-1", EventType: "order_created", Payload: []byte(`{}`), OccurredOn: occurred},
		Message{ID: "e2", AggregateID: "mat-1", EventType: "material_balance_changed", Payload: []byte(`{"delta":-3}`)},
	)
	require.NoError(t, err)
	require.Len(t, w.written, 2)

	first := w.written[0]
	assert.Equal(t, "order-1", string(first.Key))
	assert.Equal(t, occurred, first.Time)
	assert.Equal(t, "e1", header(first, "event_id"))
	assert.Equal(t, "order_created", header(first, "event_type"))
	assert.JSONEq(t, `{"delta":-3}`, string(w.written[1].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := NewKafkaPublisher(&fakeWriter{err: boom})

	err := p.Publish(context.Background(), Message{ID: "e1", AggregateID: "a"})
	assert.ErrorIs(t, err, boom)
}

func TestKafkaPublisher_NothingToSend(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	assert.NoError(t, NewKafkaPublisher(w).Publish(context.Background()))
}

func TestNewKafkaWriter(t *testing.T) {
	_, err := NewKafkaWriter(config.KafkaConfig{Topic: "workshop.events"})
	assert.Error(t, err)

	_, err = NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	w, err := NewKafkaWriter(config.KafkaConfig{
		Brokers:  []string{"localhost:9092"},
		Topic:    "workshop.events",
		ClientID: "workshop-outbox",
	})
	require.NoError(t, err)
	assert.Equal(t, "workshop.events", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestHeaderCarrier(t *testing.T) {
	c := headerCarrier{}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("tracestate", "x")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, c.Keys())
}
