/*
Package logger holds the process-wide zap logger.

Init is called once at startup. Before that, and in tests that never call it,
the package-level helpers drop everything and Get returns a no-op logger.
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"workshop/config"
	"workshop/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the global logger. Without an explicit format, development
// gets the console encoder and every other environment gets JSON.
func Init(cfg *config.LogConfig, env string) error {
	atomLevel = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format, env), sink, atomLevel)
	log = zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(zap.String("env", env))
	return nil
}

func newEncoder(format, env string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format == "" {
		format = "json"
		if env == "dev" || env == "development" {
			format = "console"
		}
	}
	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// newSink writes to stdout, or to a lumberjack-rotated file.
func newSink(cfg *config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" {
		return zapcore.Lock(os.Stdout), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 7),
		Compress:   cfg.Compress,
	}), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Set replaces the global logger; tests pass an observer-backed one.
func Set(l *zap.Logger) {
	log = l
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		if strings.EqualFold(level, "warning") {
			return zapcore.WarnLevel
		}
		return zapcore.InfoLevel
	}
	return lvl
}

func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

// Sync flushes buffered entries. Terminals and pipes reject fsync on stdout;
// those errors are not failures.
func Sync() error {
	if log == nil {
		return nil
	}
	err := log.Sync()
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}

func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

func WithRequestID(requestID string) *zap.Logger {
	return Get().With(zap.String("request_id", requestID))
}

// Ctx returns a logger carrying the request id stored in ctx, if any.
func Ctx(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return WithRequestID(requestID)
	}
	return Get()
}

// WithContext attaches loosely typed key/value pairs.
func WithContext(fields map[string]any) *zap.Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return Get().With(zapFields...)
}

func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }

// Fatal logs and exits even before Init.
func Fatal(msg string, fields ...zap.Field) {
	if log == nil {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
	log.Fatal(msg, fields...)
}
