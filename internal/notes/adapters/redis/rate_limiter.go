// Package redis содержит ограничитель частоты запросов на основе Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"securenotes/internal/notes/config"
	"securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodAllow = "allow"

	ErrorFailedToCount  = "failed to count request in redis"
	ErrorFailedToClose  = "failed to close redis connection"
	LogRedisUnreachable = "redis is unreachable, rate limiting is skipped until it recovers"
)

// RateLimiter реализует ограничение с фиксированным окном: счетчик
// на принципала живет в Redis ровно одно окно.
type RateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

var _ services.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter создает ограничитель. Недоступность Redis при старте
// не мешает запуску сервиса.
func NewRateLimiter(ctx context.Context, cfg *config.RateLimitConfig) *RateLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.GetAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log(ctx).Warn(ctx, LogRedisUnreachable,
			zap.String("address", cfg.Redis.GetAddress()),
			zap.Error(err))
	}

	return NewRateLimiterWithClient(client, cfg.Requests, cfg.Window, cfg.KeyPrefix)
}

// NewRateLimiterWithClient создает ограничитель поверх готового клиента.
func NewRateLimiterWithClient(client *redis.Client, limit int, window time.Duration, keyPrefix string) *RateLimiter {
	return &RateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

// Allow учитывает запрос принципала key и сообщает, укладывается ли он в лимит.
func (l *RateLimiter) Allow(ctx context.Context, key string) (services.RateDecision, error) {
	redisKey := l.keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrorFailedToCount,
			zap.String("method", LogMethodAllow),
			zap.Error(err))
		return services.RateDecision{}, fmt.Errorf("%s: %w", ErrorFailedToCount, err)
	}

	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return services.RateDecision{}, fmt.Errorf("%s: %w", ErrorFailedToCount, err)
	}
	// Счетчик без срока жизни появляется на первом запросе окна
	// или если предыдущий EXPIRE не дошел.
	if count == 1 || ttl < 0 {
		if err := l.client.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			return services.RateDecision{}, fmt.Errorf("%s: %w", ErrorFailedToCount, err)
		}
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return services.RateDecision{
		Allowed:   int(count) <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetIn:   ttl,
	}, nil
}

// Close закрывает соединение с Redis.
func (l *RateLimiter) Close() error {
	if err := l.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
