// Package services provides implementations of service interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodValidateToken = "ValidateAccessToken"
	msgValidatingToken  = "validating token"
	msgTokenValidated   = "token validated successfully"
	msgTokenExpired     = "token has expired"
	msgErrParsingToken  = "error parsing token" //nolint:gosec
	errCtxValidating    = "validating token"
	errCtxSigning       = "signing token"
)

// ErrEmptySubject означает, что токен не содержит идентификатор принципала.
var ErrEmptySubject = errors.New("subject claim is empty")

// JWTOptions задает параметры проверки токенов.
type JWTOptions struct {
	// Issuer и Audience проверяются, только если заданы.
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// ServiceJWT проверяет и выпускает HS256 токены. Принципал - claim sub.
type ServiceJWT struct {
	secretKey []byte
	options   JWTOptions
	parser    *jwt.Parser
	now       func() time.Time
}

var (
	_ services.TokenService = (*ServiceJWT)(nil)
	_ services.TokenIssuer  = (*ServiceJWT)(nil)
)

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string, opts JWTOptions) *ServiceJWT {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	return &ServiceJWT{
		secretKey: []byte(secretKey),
		options:   opts,
		parser:    jwt.NewParser(parserOpts...),
		now:       time.Now,
	}
}

// ValidateAccessToken проверяет JWT токен и возвращает идентификатор принципала.
func (s *ServiceJWT) ValidateAccessToken(ctx context.Context, tokenString string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateToken))
	log.Debug(ctx, msgValidatingToken)

	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, msgErrParsingToken, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		log.Debug(ctx, ErrEmptySubject.Error())
		return "", fmt.Errorf("%s: %w: %w", errCtxValidating, services.ErrInvalidJWTToken, ErrEmptySubject)
	}

	log.Debug(ctx, msgTokenValidated, zap.String("subject", claims.Subject))
	return claims.Subject, nil
}

// GenerateAccessToken выпускает токен для subject со сроком жизни ttl.
func (s *ServiceJWT) GenerateAccessToken(_ context.Context, subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("%s: %w", errCtxSigning, ErrEmptySubject)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.options.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if s.options.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.options.Audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtxSigning, err)
	}
	return token, nil
}
