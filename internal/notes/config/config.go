// Package config загружает конфигурацию сервиса заметок из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"securenotes/pkg/logger"
)

// Константы сообщений для конфигурации.
const (
	LogLoadingConfig    = "loading notes service configuration"
	LogConfigLoaded     = "configuration loaded successfully"
	LogEnvFileLoaded    = "environment file loaded"
	ErrFailedLoadConfig = "failed to load configuration"
	ErrFailedLoadEnv    = "failed to load environment file"
)

// EnvFile - переменная окружения с путем к dotenv файлу.
const EnvFile = "NOTES_ENV_FILE"

// ErrConfiguration означает неполную или некорректную конфигурацию.
// Сервис с такой конфигурацией не должен принимать запросы.
var ErrConfiguration = errors.New("configuration error")

// Config - неизменяемый снимок конфигурации на время жизни процесса.
type Config struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	HTTP       HTTPConfig       `yaml:"http"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	JWT        JWTConfig        `yaml:"jwt"`
	Limits     LimitsConfig     `yaml:"limits"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Logging    LoggingConfig    `yaml:"logging"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// Load читает конфигурацию из окружения. Если envFile (или NOTES_ENV_FILE)
// указан, сначала подгружается dotenv файл; уже заданные переменные не перезаписываются.
func Load(ctx context.Context, envFile string) (*Config, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogLoadingConfig)

	if err := loadEnvFile(ctx, envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrConfiguration, ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("postgres", cfg.Postgres.String()),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.Int("grpc_health_port", cfg.GRPC.HealthPort),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return &cfg, nil
}

func loadEnvFile(ctx context.Context, envFile string) error {
	if envFile == "" {
		envFile = os.Getenv(EnvFile)
	}
	if envFile == "" {
		return nil
	}

	log := logger.Log(ctx)
	if err := godotenv.Load(envFile); err != nil {
		log.Error(ctx, ErrFailedLoadEnv, zap.String("path", envFile), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, ErrFailedLoadEnv, err)
	}
	log.Info(ctx, LogEnvFileLoaded, zap.String("path", envFile))
	return nil
}

// Validate проверяет обязательные значения и диапазоны.
// Ошибка перечисляет все проблемные переменные сразу.
func (c *Config) Validate() error {
	var problems []string

	required := map[string]string{
		"NOTES_POSTGRES_HOST":     c.Postgres.Host,
		"NOTES_POSTGRES_DB":       c.Postgres.Database,
		"NOTES_POSTGRES_USER":     c.Postgres.User,
		"NOTES_POSTGRES_PASSWORD": c.Postgres.Password,
		"NOTES_JWT_SECRET":        c.JWT.Secret,
	}
	for _, name := range slices.Sorted(maps.Keys(required)) {
		if strings.TrimSpace(required[name]) == "" {
			problems = append(problems, name+" is required")
		}
	}

	problems = append(problems, checkPort("NOTES_POSTGRES_PORT", c.Postgres.Port, true)...)
	problems = append(problems, checkPort("NOTES_HTTP_PORT", c.HTTP.Port, true)...)
	problems = append(problems, checkPort("NOTES_GRPC_HEALTH_PORT", c.GRPC.HealthPort, false)...)

	if c.JWT.Secret != "" && len(c.JWT.Secret) < MinJWTSecretLength {
		problems = append(problems, fmt.Sprintf("NOTES_JWT_SECRET must be at least %d bytes", MinJWTSecretLength))
	}
	if c.Postgres.QueryTimeout <= 0 {
		problems = append(problems, "NOTES_POSTGRES_QUERY_TIMEOUT must be positive")
	}
	if c.Limits.MaxTitleLength <= 0 || c.Limits.MaxBodyLength <= 0 || c.Limits.MaxCategoryLength <= 0 {
		problems = append(problems, "NOTES_MAX_*_LENGTH values must be positive")
	}
	if c.Resilience.ConnectMaxAttempts <= 0 {
		problems = append(problems, "NOTES_DB_CONNECT_MAX_ATTEMPTS must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
			problems = append(problems, "NOTES_RATE_LIMIT_REQUESTS and NOTES_RATE_LIMIT_WINDOW must be positive")
		}
		problems = append(problems, checkPort("NOTES_REDIS_PORT", c.RateLimit.Redis.Port, true)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func checkPort(name string, port int, required bool) []string {
	switch {
	case port == 0 && required:
		return []string{name + " is required"}
	case port < 0 || port > 65535:
		return []string{name + " must be a valid TCP port"}
	default:
		return nil
	}
}

// Description возвращает описание всех переменных окружения.
func Description() (string, error) {
	var cfg Config
	header := "Environment variables:"
	return cleanenv.GetDescription(&cfg, &header)
}
