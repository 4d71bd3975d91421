// Package services defines service interfaces for the notes service.
package services

import (
	"context"
	"errors"
	"time"
)

// TokenService проверяет bearer токены и возвращает идентификатор принципала.
type TokenService interface {
	ValidateAccessToken(ctx context.Context, token string) (string, error)
}

// TokenIssuer выпускает токены для принципала.
type TokenIssuer interface {
	GenerateAccessToken(ctx context.Context, subject string, ttl time.Duration) (string, error)
}

// Ошибки JWT токенов.
var (
	ErrInvalidJWTToken = errors.New("invalid JWT token")
	ErrExpiredJWTToken = errors.New("JWT token has expired")
)
