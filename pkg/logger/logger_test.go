package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"workshop/config"
	"workshop/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	original := log
	t.Cleanup(func() { log = original })

	core, logs := observer.New(level)
	Set(zap.New(core))
	return logs
}

func TestNilLoggerSafety(t *testing.T) {
	original := log
	t.Cleanup(func() { log = original })
	log = nil

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")

	require.NotNil(t, With(zap.String("key", "value")))
	require.NotNil(t, WithRequestID("req-1"))
	require.NotNil(t, WithContext(map[string]any{"k": "v"}))
	require.NotNil(t, Ctx(context.Background()))
	assert.NoError(t, Sync())
}

func TestCtx_AddsRequestID(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	ctx := persistence.ContextWithRequestID(context.Background(), "req-42")
	Ctx(ctx).Info("order created")

	entries := logs.FilterMessage("order created").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestWithContext_TypedFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	WithContext(map[string]any{
		"material_id": "m-1",
		"amount":      3,
		"price":       int64(1500),
		"ratio":       0.5,
		"restock":     true,
		"cause":       errors.New("boom"),
	}).Info("ledger")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "m-1", fields["material_id"])
	assert.Equal(t, int64(3), fields["amount"])
	assert.Equal(t, int64(1500), fields["price"])
	assert.Equal(t, true, fields["restock"])
	assert.Equal(t, "boom", fields["cause"])
}

func TestUpdateLevel(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{Level: "debug", Output: "stdout", Format: "json"}, "production"))
	t.Cleanup(func() { UpdateLevel("info") })

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	UpdateLevel("warn")
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workshop.log")

	require.NoError(t, Init(&config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	}, "production"))

	for i := 0; i < 10; i++ {
		Info("balance adjusted", zap.Int("entry", i))
	}
	require.NoError(t, Sync())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}
