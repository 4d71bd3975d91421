// Package entities defines the domain entities for the notes service.
package entities

import "time"

// DefaultCategory присваивается заметке без явной категории.
const DefaultCategory = "general"

// Note представляет собой заметку владельца.
type Note struct {
	ID        string
	Owner     string
	Title     string
	Body      string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteDraft - проверенные данные для создания заметки.
type NoteDraft struct {
	Owner    string
	Title    string
	Body     string
	Category string
}

// NewNoteDraft создает черновик заметки, подставляя категорию по умолчанию.
func NewNoteDraft(owner, title, body, category string) NoteDraft {
	if category == "" {
		category = DefaultCategory
	}
	return NoteDraft{
		Owner:    owner,
		Title:    title,
		Body:     body,
		Category: category,
	}
}

// NotePatch содержит изменяемые поля; nil означает "не менять".
type NotePatch struct {
	Title    *string
	Body     *string
	Category *string
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil && p.Category == nil
}

// NoteFilter ограничивает выборку заметок владельца.
type NoteFilter struct {
	Category string
	Limit    int
	Offset   int
}

// NoteStats - сводка по заметкам владельца.
type NoteStats struct {
	Total      int
	Categories map[string]int
}
