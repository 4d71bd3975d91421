package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "bearer token rejected"
)

const bearerScheme = "bearer"

// NewAuthMiddleware проверяет bearer токен и сохраняет принципала запроса.
// Владелец заметок берется только отсюда.
func NewAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthenticated(ctx)
		}

		scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, bearerScheme) || token == "" {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthenticated(ctx)
		}

		owner, err := tokens.ValidateAccessToken(requestCtx, token)
		if err != nil || owner == "" {
			log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
			return unauthenticated(ctx)
		}

		ctx.Locals(LocalOwner, owner)

		return ctx.Next()
	}
}

func unauthenticated(ctx fiber.Ctx) error {
	ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return response.Error(ctx, fiber.StatusUnauthorized, response.CodeUnauthenticated, response.MsgUnauthenticated)
}
