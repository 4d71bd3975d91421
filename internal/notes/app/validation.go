package app

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"securenotes/internal/notes/domain/entities"
)

// Limits ограничивает размеры полей заметки и выборок. Длины считаются в символах.
type Limits struct {
	MaxTitleLength    int
	MaxBodyLength     int
	MaxCategoryLength int
	MaxListLimit      int
}

// DefaultLimits возвращает ограничения по умолчанию.
func DefaultLimits() Limits {
	return Limits{
		MaxTitleLength:    255,
		MaxBodyLength:     65536,
		MaxCategoryLength: 50,
		MaxListLimit:      500,
	}
}

// ValidateDraft проверяет и нормализует данные новой заметки владельца owner.
func ValidateDraft(limits Limits, owner, title, body, category string) (entities.NoteDraft, error) {
	title, err := validateTitle(limits, title)
	if err != nil {
		return entities.NoteDraft{}, err
	}
	if err := validateBody(limits, body); err != nil {
		return entities.NoteDraft{}, err
	}
	category, err = validateCategory(limits, category)
	if err != nil {
		return entities.NoteDraft{}, err
	}

	return entities.NewNoteDraft(owner, title, body, category), nil
}

// ValidatePatch проверяет изменения заметки. Хотя бы одно поле обязательно.
func ValidatePatch(limits Limits, patch entities.NotePatch) (entities.NotePatch, error) {
	if patch.IsEmpty() {
		return patch, invalid("body", "at least one of title, body or category is required")
	}

	var out entities.NotePatch
	if patch.Title != nil {
		title, err := validateTitle(limits, *patch.Title)
		if err != nil {
			return patch, err
		}
		out.Title = &title
	}
	if patch.Body != nil {
		if err := validateBody(limits, *patch.Body); err != nil {
			return patch, err
		}
		body := *patch.Body
		out.Body = &body
	}
	if patch.Category != nil {
		category, err := validateCategory(limits, *patch.Category)
		if err != nil {
			return patch, err
		}
		out.Category = &category
	}
	return out, nil
}

// ValidateFilter проверяет параметры выборки.
func ValidateFilter(limits Limits, filter entities.NoteFilter) (entities.NoteFilter, error) {
	if filter.Limit < 0 || (limits.MaxListLimit > 0 && filter.Limit > limits.MaxListLimit) {
		return filter, invalid("limit", fmt.Sprintf("must be between 0 and %d", limits.MaxListLimit))
	}
	if filter.Offset < 0 {
		return filter, invalid("offset", "must not be negative")
	}
	// Пустая после обрезки категория означает отсутствие фильтра.
	if strings.TrimSpace(filter.Category) == "" {
		filter.Category = ""
	} else {
		category, err := validateCategory(limits, filter.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = category
	}
	return filter, nil
}

func validateTitle(limits Limits, title string) (string, error) {
	if err := checkText("title", title); err != nil {
		return "", err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > limits.MaxTitleLength {
		return "", invalid("title", fmt.Sprintf("must be at most %d characters", limits.MaxTitleLength))
	}
	return title, nil
}

func validateBody(limits Limits, body string) error {
	if err := checkText("body", body); err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		return invalid("body", "must not be empty")
	}
	if utf8.RuneCountInString(body) > limits.MaxBodyLength {
		return invalid("body", fmt.Sprintf("must be at most %d characters", limits.MaxBodyLength))
	}
	return nil
}

func validateCategory(limits Limits, category string) (string, error) {
	if err := checkText("category", category); err != nil {
		return "", err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return entities.DefaultCategory, nil
	}
	if utf8.RuneCountInString(category) > limits.MaxCategoryLength {
		return "", invalid("category", fmt.Sprintf("must be at most %d characters", limits.MaxCategoryLength))
	}
	for _, r := range category {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != ' ' {
			return "", invalid("category", "may contain only letters, digits, spaces, '-' and '_'")
		}
	}
	return category, nil
}

func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return invalid(field, "must be valid UTF-8")
	}
	if strings.ContainsRune(s, 0) {
		return invalid(field, "must not contain NUL characters")
	}
	return nil
}
