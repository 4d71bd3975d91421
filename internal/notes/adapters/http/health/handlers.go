// Package health содержит HTTP-обработчики проверок живости и готовности.
package health

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"securenotes/internal/notes/health"
)

// LivenessResponse - ответ /health.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse - ответ /ready. Текст ошибок хранилища не раскрывается.
type ReadinessResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Handler отвечает на пробы оркестратора.
type Handler struct {
	reporter *health.Reporter
}

// NewHandler создает обработчик проверок.
func NewHandler(reporter *health.Reporter) *Handler {
	return &Handler{reporter: reporter}
}

// Liveness обрабатывает GET /health.
func (h *Handler) Liveness(ctx fiber.Ctx) error {
	live := h.reporter.Liveness()

	status := fiber.StatusOK
	if !live.Healthy {
		status = fiber.StatusServiceUnavailable
	}
	return send(ctx, status, LivenessResponse{
		Status:    live.Status,
		Timestamp: live.Timestamp.Format(time.RFC3339),
	})
}

// Readiness обрабатывает GET /ready.
func (h *Handler) Readiness(ctx fiber.Ctx) error {
	ready := h.reporter.Readiness()

	status := fiber.StatusOK
	if !ready.Ready {
		status = fiber.StatusServiceUnavailable
	}
	return send(ctx, status, ReadinessResponse{
		Status:    ready.Status,
		Database:  ready.Database,
		Timestamp: ready.Timestamp.Format(time.RFC3339),
	})
}

func send(ctx fiber.Ctx, status int, body any) error {
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending health response: %w", err)
	}
	return nil
}
