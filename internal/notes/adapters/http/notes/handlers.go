// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"securenotes/internal/notes/adapters/http/middleware"
	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/app"
	"securenotes/internal/notes/domain/entities"
	"securenotes/pkg/logger"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerGetNote    = "handling get note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"
	LogHandlerStats      = "handling note stats request"

	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgInvalidQuery       = "query parameter must be a non-negative integer"
)

// ParamNoteID - имя параметра пути с идентификатором заметки.
const ParamNoteID = "id"

// NoteService - сценарии работы с заметками.
type NoteService interface {
	CreateNote(ctx context.Context, owner, title, body, category string) (*entities.Note, error)
	GetNote(ctx context.Context, owner, noteID string) (*entities.Note, error)
	ListNotes(ctx context.Context, owner string, filter entities.NoteFilter) ([]*entities.Note, error)
	UpdateNote(ctx context.Context, owner, noteID string, patch entities.NotePatch) (*entities.Note, error)
	DeleteNote(ctx context.Context, owner, noteID string) error
	NoteStats(ctx context.Context, owner string) (*entities.NoteStats, error)
}

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	notesService NoteService
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notesService NoteService) *Handler {
	return &Handler{
		notesService: notesService,
	}
}

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreateNote)

	var req CreateNoteRequest
	if err := decodeStrict(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, fiber.StatusBadRequest, response.CodeValidation, response.MsgInvalidBody)
	}

	note, err := h.notesService.CreateNote(requestCtx, middleware.Owner(ctx), req.Title, req.Body, req.Category)
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	log.Info(requestCtx, "note created", zap.String("noteID", note.ID))
	return sendJSON(ctx, fiber.StatusCreated, toNoteResponse(note))
}

// GetNote обрабатывает запрос на получение заметки по ID.
func (h *Handler) GetNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.GetNote"))
	log.Debug(requestCtx, LogHandlerGetNote)

	noteID, ok := parseNoteID(ctx)
	if !ok {
		return response.Error(ctx, fiber.StatusNotFound, response.CodeNotFound, response.MsgNotFound)
	}

	note, err := h.notesService.GetNote(requestCtx, middleware.Owner(ctx), noteID)
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, toNoteResponse(note))
}

// ListNotes обрабатывает запрос на получение заметок владельца.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(requestCtx, LogHandlerListNotes)

	limit, err := queryInt(ctx, "limit")
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}
	offset, err := queryInt(ctx, "offset")
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	notes, err := h.notesService.ListNotes(requestCtx, middleware.Owner(ctx), entities.NoteFilter{
		Category: ctx.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, toListResponse(notes))
}

// UpdateNote обрабатывает запрос на изменение заметки.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(requestCtx, LogHandlerUpdateNote)

	noteID, ok := parseNoteID(ctx)
	if !ok {
		return response.Error(ctx, fiber.StatusNotFound, response.CodeNotFound, response.MsgNotFound)
	}

	var req UpdateNoteRequest
	if err := decodeStrict(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, fiber.StatusBadRequest, response.CodeValidation, response.MsgInvalidBody)
	}

	note, err := h.notesService.UpdateNote(requestCtx, middleware.Owner(ctx), noteID, entities.NotePatch{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
	})
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, toNoteResponse(note))
}

// DeleteNote обрабатывает запрос на удаление заметки.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(requestCtx, LogHandlerDeleteNote)

	noteID, ok := parseNoteID(ctx)
	if !ok {
		return response.Error(ctx, fiber.StatusNotFound, response.CodeNotFound, response.MsgNotFound)
	}

	if err := h.notesService.DeleteNote(requestCtx, middleware.Owner(ctx), noteID); err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	log.Info(requestCtx, "note deleted", zap.String("noteID", noteID))
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Stats обрабатывает запрос сводки по заметкам владельца.
func (h *Handler) Stats(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerStats)

	stats, err := h.notesService.NoteStats(requestCtx, middleware.Owner(ctx))
	if err != nil {
		return response.FromError(ctx, requestCtx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, toStatsResponse(stats))
}

// parseNoteID принимает только UUID: иначе заметки заведомо нет.
func parseNoteID(ctx fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(ctx.Params(ParamNoteID))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func queryInt(ctx fiber.Ctx, name string) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &app.ValidationError{Field: name, Reason: ErrMsgInvalidQuery}
	}
	return v, nil
}

func sendJSON(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
