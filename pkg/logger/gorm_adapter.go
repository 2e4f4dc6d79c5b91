package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workshop/infrastructure/persistence"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// ParseGormLevel maps database.log_level to a GORM log level. Unknown values
// fall back to warn so slow statements still show up.
func ParseGormLevel(level string) gormlogger.LogLevel {
	levels := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"info":   gormlogger.Info,
	}
	if lvl, ok := levels[level]; ok {
		return lvl
	}
	return gormlogger.Warn
}

type GormLoggerConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func DefaultGormLoggerConfig() *GormLoggerConfig {
	return &GormLoggerConfig{SlowThreshold: 200 * time.Millisecond, IgnoreRecordNotFoundError: true}
}

// GormLoggerAdapter routes GORM output into the "gorm" child of the global logger.
// Statement traces are logged at debug, slow ones at warn and failures at error.
type GormLoggerAdapter struct {
	level gormlogger.LogLevel
	base  *zap.Logger
	cfg   GormLoggerConfig
}

func NewGormLoggerAdapter(level gormlogger.LogLevel) *GormLoggerAdapter {
	return NewGormLoggerAdapterWithConfig(level, nil)
}

func NewGormLoggerAdapterWithConfig(level gormlogger.LogLevel, cfg *GormLoggerConfig) *GormLoggerAdapter {
	if cfg == nil {
		cfg = DefaultGormLoggerConfig()
	}
	return &GormLoggerAdapter{level: level, base: Get().Named("gorm"), cfg: *cfg}
}

func (a *GormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *a
	cp.level = level
	return &cp
}

func (a *GormLoggerAdapter) forCtx(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return a.base.With(zap.String("request_id", id))
	}
	return a.base
}

func (a *GormLoggerAdapter) Info(ctx context.Context, format string, args ...any) {
	if a.level >= gormlogger.Info {
		a.forCtx(ctx).Info(fmt.Sprintf(format, args...))
	}
}

func (a *GormLoggerAdapter) Warn(ctx context.Context, format string, args ...any) {
	if a.level >= gormlogger.Warn {
		a.forCtx(ctx).Warn(fmt.Sprintf(format, args...))
	}
}

func (a *GormLoggerAdapter) Error(ctx context.Context, format string, args ...any) {
	if a.level >= gormlogger.Error {
		a.forCtx(ctx).Error(fmt.Sprintf(format, args...))
	}
}

func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}
	took := time.Since(begin)
	slow := a.cfg.SlowThreshold > 0 && took > a.cfg.SlowThreshold

	switch {
	case err != nil && a.level >= gormlogger.Error:
		if a.cfg.IgnoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		a.forCtx(ctx).Error("sql failed", append(statementFields(fc, took), zap.Error(err))...)
	case slow && a.level >= gormlogger.Warn:
		a.forCtx(ctx).Warn("slow sql", append(statementFields(fc, took), zap.Duration("threshold", a.cfg.SlowThreshold))...)
	case a.level >= gormlogger.Info:
		a.forCtx(ctx).Debug("sql", statementFields(fc, took)...)
	}
}

func statementFields(fc func() (string, int64), took time.Duration) []zap.Field {
	sql, rows := fc()
	return []zap.Field{zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", took)}
}
