// Package app implements application business logic for the notes service.
package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"securenotes/internal/notes/domain/entities"
	"securenotes/internal/notes/ports/repositories"
	"securenotes/pkg/logger"
)

// NoteUseCase представляет собой бизнес-логику работы с заметками.
// Владелец всегда передается явно и берется из аутентифицированного принципала.
type NoteUseCase struct {
	noteRepo repositories.NoteRepository
	limits   Limits
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(noteRepo repositories.NoteRepository, limits Limits) *NoteUseCase {
	return &NoteUseCase{
		noteRepo: noteRepo,
		limits:   limits,
	}
}

// CreateNote создает новую заметку владельца.
func (uc *NoteUseCase) CreateNote(ctx context.Context, owner, title, body, category string) (*entities.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	draft, err := ValidateDraft(uc.limits, owner, title, body, category)
	if err != nil {
		return nil, err
	}

	note, err := uc.noteRepo.Create(ctx, draft)
	if err != nil {
		return nil, uc.translate(ctx, "create note", err)
	}
	return note, nil
}

// GetNote возвращает заметку владельца по ID.
func (uc *NoteUseCase) GetNote(ctx context.Context, owner, noteID string) (*entities.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	note, err := uc.noteRepo.GetByID(ctx, noteID, owner)
	if err != nil {
		return nil, uc.translate(ctx, "get note", err)
	}
	return note, nil
}

// ListNotes возвращает заметки владельца, новые первыми.
func (uc *NoteUseCase) ListNotes(ctx context.Context, owner string, filter entities.NoteFilter) ([]*entities.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	filter, err := ValidateFilter(uc.limits, filter)
	if err != nil {
		return nil, err
	}

	notes, err := uc.noteRepo.List(ctx, owner, filter)
	if err != nil {
		return nil, uc.translate(ctx, "list notes", err)
	}
	if notes == nil {
		notes = []*entities.Note{}
	}
	return notes, nil
}

// UpdateNote применяет изменения к заметке владельца.
func (uc *NoteUseCase) UpdateNote(ctx context.Context, owner, noteID string, patch entities.NotePatch) (*entities.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	patch, err := ValidatePatch(uc.limits, patch)
	if err != nil {
		return nil, err
	}

	note, err := uc.noteRepo.Update(ctx, noteID, owner, patch)
	if err != nil {
		return nil, uc.translate(ctx, "update note", err)
	}
	return note, nil
}

// DeleteNote удаляет заметку владельца.
func (uc *NoteUseCase) DeleteNote(ctx context.Context, owner, noteID string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}

	if err := uc.noteRepo.Delete(ctx, noteID, owner); err != nil {
		return uc.translate(ctx, "delete note", err)
	}
	return nil
}

// NoteStats возвращает количество заметок владельца по категориям.
func (uc *NoteUseCase) NoteStats(ctx context.Context, owner string) (*entities.NoteStats, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	stats, err := uc.noteRepo.Stats(ctx, owner)
	if err != nil {
		return nil, uc.translate(ctx, "collect note stats", err)
	}
	return stats, nil
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// translate переводит ошибки хранилища в ошибки бизнес-логики.
// Текст ошибок хранилища остается только в логе.
func (uc *NoteUseCase) translate(ctx context.Context, operation string, err error) error {
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return ErrNotFound
	}
	logger.Log(ctx).Error(ctx, "storage operation failed",
		zap.String("operation", operation),
		zap.Error(err))
	return ErrUnavailable
}
