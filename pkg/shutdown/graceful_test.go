package shutdown_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securenotes/pkg/shutdown"
)

var errHook = errors.New("hook failed")

func TestRun(t *testing.T) {
	t.Run("runs hooks in order", func(t *testing.T) {
		var order []int
		err := shutdown.Run(context.Background(), time.Second,
			func(context.Context) error { order = append(order, 1); return nil },
			func(context.Context) error { order = append(order, 2); return nil },
		)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("collects hook errors and keeps going", func(t *testing.T) {
		secondCalled := false
		err := shutdown.Run(context.Background(), time.Second,
			func(context.Context) error { return errHook },
			func(context.Context) error { secondCalled = true; return nil },
		)

		require.ErrorIs(t, err, errHook)
		assert.True(t, secondCalled)
	})

	t.Run("times out on a stuck hook", func(t *testing.T) {
		err := shutdown.Run(context.Background(), 20*time.Millisecond,
			func(ctx context.Context) error {
				<-ctx.Done()
				time.Sleep(50 * time.Millisecond)
				return nil
			},
		)

		assert.ErrorIs(t, err, shutdown.ErrTimeout)
	})
}

func TestWaitReturnsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{})

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := shutdown.Wait(ctx, time.Second, func(hookCtx context.Context) error {
		assert.NoError(t, hookCtx.Err(), "hooks get a fresh deadline after the parent is canceled")
		close(called)
		return nil
	})

	require.NoError(t, err)
	select {
	case <-called:
	default:
		t.Fatal("hook was not called")
	}
}
