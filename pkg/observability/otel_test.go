package observability

import (
	"bytes"
	"context"
	"testing"

	"workshop/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	inst, shutdown, err := Init(context.Background(), config.TracingConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, inst)

	_, span := inst.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_EnabledExportsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	inst, shutdown, err := initWithWriter(context.Background(),
		config.TracingConfig{Enabled: true, ServiceName: "workshop-test"}, "1.0.0", &buf)
	require.NoError(t, err)

	_, span := inst.Tracer("test").Start(context.Background(), "order.create")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	counter, err := inst.Meter("test").Int64Counter("workshop.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "order.create")
}

func TestInstruments_NilSafe(t *testing.T) {
	var inst *Instruments
	assert.NotNil(t, inst.Tracer("x"))
	assert.NotNil(t, inst.Meter("x"))
}
