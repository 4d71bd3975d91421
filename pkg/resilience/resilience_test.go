package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securenotes/pkg/resilience"
)

var (
	errTransient = errors.New("transient failure")
	errPermanent = errors.New("permanent failure")
)

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: attempts,
		Backoff:     resilience.Backoff{Base: time.Millisecond, Max: 2 * time.Millisecond, Factor: 2},
		ShouldRetry: func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestBackoffDelay(t *testing.T) {
	b := resilience.Backoff{Base: time.Second, Max: 30 * time.Second, Factor: 2}

	assert.Equal(t, time.Second, b.Delay(1))
	assert.Equal(t, 2*time.Second, b.Delay(2))
	assert.Equal(t, 4*time.Second, b.Delay(3))
	assert.Equal(t, 16*time.Second, b.Delay(5))
	assert.Equal(t, 30*time.Second, b.Delay(6))
	assert.Equal(t, 30*time.Second, b.Delay(60))
	assert.Equal(t, time.Second, b.Delay(0))

	t.Run("jitter only shortens the delay", func(t *testing.T) {
		jittered := resilience.Backoff{Base: time.Second, Max: 30 * time.Second, Factor: 2, Jitter: 0.5}
		for range 100 {
			d := jittered.Delay(3)
			assert.LessOrEqual(t, d, 4*time.Second)
			assert.GreaterOrEqual(t, d, 2*time.Second)
		}
	})
}

func TestRetryExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("test", fastRetry(3)).Execute(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("test", fastRetry(5)).Execute(ctx, func(context.Context) error {
			calls++
			return errPermanent
		})

		require.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error when attempts are exhausted", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("test", fastRetry(4)).Execute(ctx, func(context.Context) error {
			calls++
			return errTransient
		})

		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 4, calls)
	})

	t.Run("context cancellation interrupts backoff", func(t *testing.T) {
		cfg := fastRetry(3)
		cfg.Backoff = resilience.Backoff{Base: time.Hour, Max: time.Hour}

		cancelCtx, cancel := context.WithCancel(ctx)
		err := resilience.NewRetry("test", cfg).Execute(cancelCtx, func(context.Context) error {
			cancel()
			return errTransient
		})

		require.ErrorIs(t, err, resilience.ErrContextCanceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.CircuitBreakerConfig{
		ErrorThreshold:   2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
		IsFailure:        func(err error) bool { return errors.Is(err, errTransient) },
	}

	fail := func(context.Context) error { return errTransient }
	succeed := func(context.Context) error { return nil }

	t.Run("opens after threshold and recovers after timeout", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("db", cfg)

		require.ErrorIs(t, cb.Execute(ctx, fail), errTransient)
		assert.Equal(t, resilience.StateClosed, cb.State())
		require.ErrorIs(t, cb.Execute(ctx, fail), errTransient)
		assert.Equal(t, resilience.StateOpen, cb.State())

		called := false
		err := cb.Execute(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.False(t, called)

		time.Sleep(30 * time.Millisecond)
		require.NoError(t, cb.Execute(ctx, succeed))
		assert.Equal(t, resilience.StateClosed, cb.State())
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("db", cfg)
		_ = cb.Execute(ctx, fail)
		_ = cb.Execute(ctx, fail)

		time.Sleep(30 * time.Millisecond)
		require.ErrorIs(t, cb.Execute(ctx, fail), errTransient)
		assert.Equal(t, resilience.StateOpen, cb.State())
	})

	t.Run("errors that are not failures keep it closed", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("db", cfg)
		for range 5 {
			_ = cb.Execute(ctx, func(context.Context) error { return errPermanent })
		}
		assert.Equal(t, resilience.StateClosed, cb.State())
	})
}

func TestPolicyExecute(t *testing.T) {
	policy := resilience.NewPolicy("db", fastRetry(2), resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          time.Hour,
		SuccessThreshold: 1,
		IsFailure:        func(err error) bool { return errors.Is(err, errTransient) },
	})

	calls := 0
	err := policy.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls, "retries run inside a single breaker pass")
	assert.Equal(t, resilience.StateOpen, policy.State())

	err = policy.Execute(context.Background(), "op", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
