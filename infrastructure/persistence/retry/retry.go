// Package retry re-runs a transaction on transient storage failures.
//
// Only lock conflicts and optimistic version clashes are retried. Business
// outcomes such as insufficient stock are final on the first attempt.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"workshop/config"
	"workshop/domain/shared"
	"workshop/pkg/logger"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	config.RetryConfig

	// Extra marks additional errors as retryable.
	Extra func(error) bool
}

func DefaultConfig() Config {
	return Config{RetryConfig: config.RetryConfig{
		Enabled:                       true,
		MaxAttempts:                   3,
		InitialDelay:                  100 * time.Millisecond,
		MaxDelay:                      2 * time.Second,
		BackoffFactor:                 2,
		JitterEnabled:                 true,
		RetryOnConcurrentModification: true,
		RetryOnDeadlock:               true,
		RetryOnLockTimeout:            true,
	}}
}

func FromAppConfig(cfg *config.Config) Config {
	return Config{RetryConfig: cfg.Database.Retry}
}

// Backoff is the pause after the given 1-based attempt. Jitter keeps it
// within 20% of the nominal delay.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := min(float64(c.InitialDelay)*math.Pow(c.BackoffFactor, float64(attempt-1)), float64(c.MaxDelay))
	if c.JitterEnabled {
		d *= 0.8 + 0.4*rand.Float64()
	}
	return time.Duration(max(d, 0))
}

type failureKind int

const (
	permanent failureKind = iota
	versionClash
	deadlock
	lockTimeout
	transient
)

// MySQL error numbers.
const (
	erLockDeadlock    = 1213
	erLockWaitTimeout = 1205
)

func classify(err error) failureKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return permanent
	case errors.Is(err, shared.ErrConcurrentModification):
		return versionClash
	case errors.Is(err, shared.ErrInsufficientBalance),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrConflict),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return permanent
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erLockDeadlock:
			return deadlock
		case erLockWaitTimeout:
			return lockTimeout
		}
		return permanent
	}

	// Postgres: SQLSTATE 40P01 is a deadlock, 55P03 lock_not_available.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "40p01"):
		return deadlock
	case strings.Contains(msg, "lock wait timeout"), strings.Contains(msg, "55p03"):
		return lockTimeout
	case errors.Is(err, gorm.ErrInvalidTransaction),
		strings.Contains(msg, "connection") && strings.Contains(msg, "lost"):
		return transient
	}
	return permanent
}

// Retryable reports whether err is worth another attempt under c.
func (c Config) Retryable(err error) bool {
	if err == nil {
		return false
	}
	kind := classify(err)
	if kind == permanent && c.Extra != nil && c.Extra(err) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch kind {
	case versionClash:
		return c.RetryOnConcurrentModification
	case deadlock:
		return c.RetryOnDeadlock
	case lockTimeout:
		return c.RetryOnLockTimeout
	case transient:
		return true
	}
	return false
}

// Do calls fn until it succeeds, fails permanently or runs out of attempts.
// The last error is returned as is.
func Do(ctx context.Context, c Config, fn func(ctx context.Context) error) error {
	attempts := c.MaxAttempts
	if !c.Enabled || attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil || attempt >= attempts || !c.Retryable(err) {
			return err
		}

		delay := c.Backoff(attempt)
		logger.Ctx(ctx).Warn("retrying transaction",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
