// Package shutdown предоставляет корректное завершение приложения
// по сигналам SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"securenotes/pkg/logger"
)

// Hook - функция освобождения ресурса при завершении.
type Hook func(context.Context) error

// ErrTimeout возвращается, если хуки не завершились за отведенное время.
var ErrTimeout = errors.New("shutdown timed out")

// Wait блокируется до сигнала SIGINT/SIGTERM или отмены ctx,
// затем выполняет хуки по порядку в рамках timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	logger.Log(ctx).Info(ctx, "shutdown initiated")

	return Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run выполняет хуки последовательно в порядке передачи и
// возвращает объединенную ошибку.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for _, hook := range hooks {
			if err := hook(ctx); err != nil {
				logger.Log(ctx).Error(ctx, "shutdown hook failed", zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		errs = append(errs, ErrTimeout)
		mu.Unlock()
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
