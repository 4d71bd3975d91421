package notes

import (
	"time"

	"securenotes/internal/notes/domain/entities"
)

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// UpdateNoteRequest содержит изменяемые поля; отсутствующее поле не меняется.
type UpdateNoteRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Category *string `json:"category"`
}

// NoteResponse представляет заметку в ответе.
type NoteResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	Owner     string `json:"owner"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListNotesResponse содержит заметки владельца.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes"`
	Count int            `json:"count"`
}

// StatsResponse содержит сводку по заметкам владельца.
type StatsResponse struct {
	TotalNotes int            `json:"total_notes"`
	Categories map[string]int `json:"categories"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toNoteResponse(note *entities.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		Category:  note.Category,
		Owner:     note.Owner,
		CreatedAt: formatTime(note.CreatedAt),
		UpdatedAt: formatTime(note.UpdatedAt),
	}
}

func toListResponse(notes []*entities.Note) ListNotesResponse {
	out := ListNotesResponse{Notes: make([]NoteResponse, 0, len(notes))}
	for _, note := range notes {
		out.Notes = append(out.Notes, toNoteResponse(note))
	}
	out.Count = len(out.Notes)
	return out
}

func toStatsResponse(stats *entities.NoteStats) StatsResponse {
	categories := stats.Categories
	if categories == nil {
		categories = map[string]int{}
	}
	return StatsResponse{TotalNotes: stats.Total, Categories: categories}
}
