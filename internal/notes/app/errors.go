package app

import (
	"errors"
	"fmt"
)

// Ошибки уровня бизнес-логики.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("note not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnavailable     = errors.New("storage unavailable")
)

// ValidationError описывает некорректное поле запроса.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is позволяет сравнивать ValidationError с ErrValidation через errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
