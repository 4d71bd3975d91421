// Package response формирует единый формат ответов об ошибках HTTP API.
package response

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"securenotes/internal/notes/app"
	"securenotes/pkg/logger"
)

// Стабильные коды ошибок.
const (
	CodeValidation      = "validation_error"
	CodeUnauthenticated = "unauthenticated"
	CodeNotFound        = "not_found"
	CodeRouteNotFound   = "route_not_found"
	CodeRateLimited     = "rate_limited"
	CodeUnavailable     = "service_unavailable"
	CodeInternal        = "internal_error"
	CodeBodyTooLarge    = "payload_too_large"
	CodeMethodNotAllow  = "method_not_allowed"
)

// Общие тексты ошибок. Подробности остаются в логе.
const (
	MsgInvalidBody      = "request body must be a JSON object with the expected fields"
	MsgUnauthenticated  = "valid bearer token required"
	MsgNotFound         = "note not found"
	MsgRouteNotFound    = "route not found"
	MsgRateLimited      = "too many requests"
	MsgUnavailable      = "service temporarily unavailable"
	MsgInternal         = "internal server error"
	MsgBodyTooLarge     = "request body too large"
	MsgMethodNotAllowed = "method not allowed"
)

// ErrorBody - содержимое поля error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse - конверт ответа об ошибке.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error отправляет ответ об ошибке.
func Error(ctx fiber.Ctx, status int, code, message string) error {
	return send(ctx, status, ErrorBody{Code: code, Message: message})
}

func send(ctx fiber.Ctx, status int, body ErrorBody) error {
	if err := ctx.Status(status).JSON(ErrorResponse{Error: body}); err != nil {
		return fmt.Errorf("error sending %d response: %w", status, err)
	}
	return nil
}

// FromError переводит ошибку бизнес-логики в HTTP ответ.
func FromError(ctx fiber.Ctx, requestCtx context.Context, err error) error {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return send(ctx, fiber.StatusBadRequest, ErrorBody{
			Code: CodeValidation, Message: verr.Reason, Field: verr.Field,
		})
	case errors.Is(err, app.ErrValidation):
		return Error(ctx, fiber.StatusBadRequest, CodeValidation, MsgInvalidBody)
	case errors.Is(err, app.ErrUnauthenticated):
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return Error(ctx, fiber.StatusUnauthorized, CodeUnauthenticated, MsgUnauthenticated)
	case errors.Is(err, app.ErrNotFound):
		return Error(ctx, fiber.StatusNotFound, CodeNotFound, MsgNotFound)
	case errors.Is(err, app.ErrUnavailable):
		return Error(ctx, fiber.StatusServiceUnavailable, CodeUnavailable, MsgUnavailable)
	default:
		logger.Log(requestCtx).Error(requestCtx, "unexpected error", zap.Error(err))
		return Error(ctx, fiber.StatusInternalServerError, CodeInternal, MsgInternal)
	}
}

// ErrorHandler - обработчик ошибок fiber для ошибок, не обработанных маршрутами.
func ErrorHandler(ctx fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return Error(ctx, fiberErr.Code, CodeRouteNotFound, MsgRouteNotFound)
		case fiber.StatusMethodNotAllowed:
			return Error(ctx, fiberErr.Code, CodeMethodNotAllow, MsgMethodNotAllowed)
		case fiber.StatusRequestEntityTooLarge:
			return Error(ctx, fiberErr.Code, CodeBodyTooLarge, MsgBodyTooLarge)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusUnsupportedMediaType:
			return Error(ctx, fiber.StatusBadRequest, CodeValidation, MsgInvalidBody)
		}
	}

	logger.Log(ctx.Context()).Error(ctx.Context(), "unhandled request error", zap.Error(err))
	return Error(ctx, fiber.StatusInternalServerError, CodeInternal, MsgInternal)
}
