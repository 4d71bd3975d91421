package middleware

import (
	"github.com/gofiber/fiber/v3"

	"securenotes/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware принимает X-Request-ID клиента или создает новый
// и кладет его в контекст запроса и заголовок ответа.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := logger.RequestIDOrNew(ctx.Get(HeaderRequestID))

		ctx.Set(HeaderRequestID, requestID)
		ctx.Locals(LocalUserContext, logger.NewRequestIDContext(ctx.Context(), requestID))

		return ctx.Next()
	}
}
