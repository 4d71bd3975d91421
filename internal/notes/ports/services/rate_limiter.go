package services

import (
	"context"
	"time"
)

// RateDecision - результат проверки лимита.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// RateLimiter считает запросы по ключу в пределах окна.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
