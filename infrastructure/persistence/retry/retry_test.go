package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"workshop/config"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	c := DefaultConfig()
	c.InitialDelay = time.Millisecond
	c.MaxDelay = 2 * time.Millisecond
	c.JitterEnabled = false
	return c
}

func TestRetryable(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql deadlock", &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"mysql lock wait", fmt.Errorf("update: %w", &mysqlDriver.MySQLError{Number: 1205}), true},
		{"mysql duplicate", &mysqlDriver.MySQLError{Number: 1062}, false},
		{"postgres deadlock", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), true},
		{"version clash", shared.NewConcurrentModificationError("order", "o-1"), true},
		{"insufficient stock", material.NewInsufficientBalanceError("m-1", 3, 2), false},
		{"not found", order.NewOrderNotFoundError("o-1"), false},
		{"invalid amount", shared.NewInvalidAmountError("m-1", 0), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cfg.Retryable(tc.err))
		})
	}
}

func TestRetryable_RespectsSwitches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryOnDeadlock = false
	cfg.RetryOnConcurrentModification = false

	assert.False(t, cfg.Retryable(&mysqlDriver.MySQLError{Number: 1213}))
	assert.False(t, cfg.Retryable(shared.NewConcurrentModificationError("order", "o-1")))
	assert.True(t, cfg.Retryable(&mysqlDriver.MySQLError{Number: 1205}))
}

func TestDo_RetriesDeadlocks(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &mysqlDriver.MySQLError{Number: 1213}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NeverRetriesInsufficientBalance(t *testing.T) {
	calls := 0
	shortage := material.NewInsufficientBalanceError("m-1", 6, 4)

	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return shortage
	})

	assert.Same(t, shortage, err)
	assert.Equal(t, 1, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return &mysqlDriver.MySQLError{Number: 1205}
	})

	require.Error(t, err)
	assert.Equal(t, DefaultConfig().MaxAttempts, calls)
}

func TestDo_Disabled(t *testing.T) {
	cfg := fastConfig()
	cfg.Enabled = false

	calls := 0
	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return &mysqlDriver.MySQLError{Number: 1213}
	})
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	cfg := Config{RetryConfig: config.RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}}

	assert.Equal(t, time.Duration(0), cfg.Backoff(0))
	assert.Equal(t, 100*time.Millisecond, cfg.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, cfg.Backoff(3))
	assert.Equal(t, time.Second, cfg.Backoff(10))

	cfg.JitterEnabled = true
	for i := 0; i < 20; i++ {
		d := cfg.Backoff(1)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

func TestRetryable_Extra(t *testing.T) {
	flaky := errors.New("broker unavailable")
	cfg := DefaultConfig()
	assert.False(t, cfg.Retryable(flaky))

	cfg.Extra = func(err error) bool { return errors.Is(err, flaky) }
	assert.True(t, cfg.Retryable(fmt.Errorf("publish: %w", flaky)))
	assert.False(t, cfg.Retryable(context.Canceled))
}
