package resilience

import (
	"context"

	"go.uber.org/zap"

	"securenotes/pkg/logger"
)

// Policy объединяет Circuit Breaker и повтор: повторы выполняются внутри
// одного пропуска через Circuit Breaker.
type Policy struct {
	name           string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewPolicy создает политику отказоустойчивости для зависимости name.
func NewPolicy(name string, retry RetryConfig, breaker CircuitBreakerConfig) *Policy {
	return &Policy{
		name:           name,
		circuitBreaker: NewCircuitBreaker(name, breaker),
		retry:          NewRetry(name, retry),
	}
}

// Execute выполняет operation с учетом политики.
func (p *Policy) Execute(ctx context.Context, operationName string, operation func(ctx context.Context) error) error {
	logger.Log(ctx).Debug(ctx, "executing operation with resilience",
		zap.String("dependency", p.name),
		zap.String("operation", operationName))

	return p.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
		return p.retry.Execute(ctx, operation)
	})
}

// State возвращает состояние Circuit Breaker политики.
func (p *Policy) State() CircuitState {
	return p.circuitBreaker.State()
}
