package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
)

// Заголовки ограничения частоты.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
)

// NewRateLimitMiddleware ограничивает частоту запросов принципала.
// Должен стоять после NewAuthMiddleware. При недоступности хранилища
// счетчиков запрос пропускается.
func NewRateLimitMiddleware(limiter services.RateLimiter) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		owner := Owner(ctx)
		if owner == "" {
			return ctx.Next()
		}

		decision, err := limiter.Allow(requestCtx, owner)
		if err != nil {
			logger.Log(requestCtx).Warn(requestCtx, "rate limiter unavailable, request allowed", zap.Error(err))
			return ctx.Next()
		}

		ctx.Set(HeaderRateLimit, strconv.Itoa(decision.Limit))
		ctx.Set(HeaderRateRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.ResetIn.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return response.Error(ctx, fiber.StatusTooManyRequests, response.CodeRateLimited, response.MsgRateLimited)
		}

		return ctx.Next()
	}
}
