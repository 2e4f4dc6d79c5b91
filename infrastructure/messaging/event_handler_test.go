package messaging

import (
	"testing"

	"workshop/domain/shared"
	"workshop/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEventHandler_OnEventBus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	bus := shared.NewEventBus()
	require.NoError(t, bus.Subscribe(shared.WildcardEvent, NewLogEventHandler()))

	event := shared.NewBaseEvent("material_balance_changed", "mat-1", map[string]any{"delta": -3})
	require.NoError(t, bus.Publish(event))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "material_balance_changed", fields["event"])
	assert.Equal(t, "mat-1", fields["aggregate_id"])
}

func TestLoggingPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	err := LoggingPublisher{}.Publish(t.Context(), Message{ID: "e1", EventType: "order_created"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("outbox event published").Len())
}
