// Package http содержит компоненты HTTP сервера сервиса заметок.
package http

import (
	"github.com/gofiber/fiber/v3"

	healthHandlers "securenotes/internal/notes/adapters/http/health"
	"securenotes/internal/notes/adapters/http/middleware"
	"securenotes/internal/notes/adapters/http/notes"
	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/health"
	"securenotes/internal/notes/ports/services"
)

// Dependencies - зависимости маршрутов.
type Dependencies struct {
	Notes    notes.NoteService
	Tokens   services.TokenService
	Reporter *health.Reporter
	// Limiter необязателен; nil отключает ограничение частоты.
	Limiter services.RateLimiter
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	notesHandler := notes.NewHandler(deps.Notes)
	healthHandler := healthHandlers.NewHandler(deps.Reporter)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	// Пробы (публичные).
	app.Get("/health", healthHandler.Liveness)
	app.Get("/ready", healthHandler.Readiness)

	// Защищенные маршруты.
	protected := []fiber.Handler{middleware.NewAuthMiddleware(deps.Tokens)}
	if deps.Limiter != nil {
		protected = append(protected, middleware.NewRateLimitMiddleware(deps.Limiter))
	}

	notesRoutes := app.Group("/notes", protected...)
	notesRoutes.Post("/", notesHandler.CreateNote)
	notesRoutes.Get("/", notesHandler.ListNotes)
	notesRoutes.Get("/:"+notes.ParamNoteID, notesHandler.GetNote)
	notesRoutes.Put("/:"+notes.ParamNoteID, notesHandler.UpdateNote)
	notesRoutes.Delete("/:"+notes.ParamNoteID, notesHandler.DeleteNote)

	statsRoutes := app.Group("/stats", protected...)
	statsRoutes.Get("/", notesHandler.Stats)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return response.Error(c, fiber.StatusNotFound, response.CodeRouteNotFound, response.MsgRouteNotFound)
	})
}
