package config

import (
	"context"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MinJWTSecretLength - минимальная длина ключа HS256.
const MinJWTSecretLength = 32

// JWTConfig содержит настройки проверки bearer токенов.
type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"NOTES_JWT_SECRET" env-description:"HMAC key for bearer tokens (required)"`
	Issuer   string        `yaml:"issuer" env:"NOTES_JWT_ISSUER" env-description:"expected iss claim, empty disables the check"`
	Audience string        `yaml:"audience" env:"NOTES_JWT_AUDIENCE" env-description:"expected aud claim, empty disables the check"`
	Leeway   time.Duration `yaml:"leeway" env:"NOTES_JWT_LEEWAY" env-default:"30s"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"NOTES_JWT_TOKEN_TTL" env-default:"1h" env-description:"lifetime of tokens minted by notes-token"`
}

// LoadJWT читает только настройки токенов. Используется утилитой выпуска
// токенов, которой не нужны остальные секции.
func LoadJWT(ctx context.Context, envFile string) (*JWTConfig, error) {
	if err := loadEnvFile(ctx, envFile); err != nil {
		return nil, err
	}

	var cfg JWTConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfiguration, ErrFailedLoadConfig, err)
	}
	if len(cfg.Secret) < MinJWTSecretLength {
		return nil, fmt.Errorf("%w: NOTES_JWT_SECRET must be at least %d bytes", ErrConfiguration, MinJWTSecretLength)
	}
	return &cfg, nil
}
