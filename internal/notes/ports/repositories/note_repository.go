// Package repositories defines repository interfaces for the notes service.
package repositories

import (
	"context"
	"errors"

	"securenotes/internal/notes/domain/entities"
)

// Ошибки хранилища.
var (
	// ErrNoteNotFound - заметка отсутствует или принадлежит другому владельцу.
	ErrNoteNotFound = errors.New("note not found")
	// ErrPersistence - сбой соединения или ограничения хранилища.
	ErrPersistence = errors.New("persistence failure")
)

// NoteRepository определяет операции хранилища заметок. Все операции,
// кроме Create, ограничены владельцем owner.
type NoteRepository interface {
	Create(ctx context.Context, draft entities.NoteDraft) (*entities.Note, error)
	GetByID(ctx context.Context, noteID, owner string) (*entities.Note, error)
	List(ctx context.Context, owner string, filter entities.NoteFilter) ([]*entities.Note, error)
	Update(ctx context.Context, noteID, owner string, patch entities.NotePatch) (*entities.Note, error)
	Delete(ctx context.Context, noteID, owner string) error
	Stats(ctx context.Context, owner string) (*entities.NoteStats, error)
}
