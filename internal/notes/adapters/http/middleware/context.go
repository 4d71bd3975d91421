// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Ключи fiber.Locals.
const (
	LocalUserContext = "userContext"
	LocalOwner       = "owner"
)

// RequestContext возвращает контекст запроса с идентификатором запроса.
func RequestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(LocalUserContext).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context()
}

// Owner возвращает аутентифицированного принципала или пустую строку.
func Owner(ctx fiber.Ctx) string {
	owner, _ := ctx.Locals(LocalOwner).(string)
	return owner
}
