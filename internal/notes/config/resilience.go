package config

import (
	"time"

	"securenotes/pkg/resilience"
)

// ResilienceConfig содержит параметры переподключения к базе, повтора операций
// и Circuit Breaker.
type ResilienceConfig struct {
	ConnectBaseDelay   time.Duration `yaml:"connect_base_delay" env:"NOTES_DB_CONNECT_BASE_DELAY" env-default:"1s"`
	ConnectMaxDelay    time.Duration `yaml:"connect_max_delay" env:"NOTES_DB_CONNECT_MAX_DELAY" env-default:"30s"`
	ConnectJitter      float64       `yaml:"connect_jitter" env:"NOTES_DB_CONNECT_JITTER" env-default:"0.2"`
	ConnectMaxAttempts int           `yaml:"connect_max_attempts" env:"NOTES_DB_CONNECT_MAX_ATTEMPTS" env-default:"10"`
	ProbeInterval      time.Duration `yaml:"probe_interval" env:"NOTES_DB_PROBE_INTERVAL" env-default:"5s"`

	RetryMaxAttempts int           `yaml:"retry_max_attempts" env:"NOTES_DB_RETRY_MAX_ATTEMPTS" env-default:"3"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay" env:"NOTES_DB_RETRY_BASE_DELAY" env-default:"50ms"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay" env:"NOTES_DB_RETRY_MAX_DELAY" env-default:"500ms"`

	BreakerErrorThreshold   int           `yaml:"breaker_error_threshold" env:"NOTES_DB_BREAKER_ERROR_THRESHOLD" env-default:"5"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout" env:"NOTES_DB_BREAKER_TIMEOUT" env-default:"10s"`
	BreakerSuccessThreshold int           `yaml:"breaker_success_threshold" env:"NOTES_DB_BREAKER_SUCCESS_THRESHOLD" env-default:"2"`
}

// ConnectBackoff возвращает отступ для переподключения к базе.
func (c *ResilienceConfig) ConnectBackoff() resilience.Backoff {
	return resilience.Backoff{
		Base:   c.ConnectBaseDelay,
		Max:    c.ConnectMaxDelay,
		Factor: 2,
		Jitter: c.ConnectJitter,
	}
}

// RetryConfig возвращает настройки повтора отдельных операций.
// Классификатор повторяемых ошибок задает адаптер хранилища.
func (c *ResilienceConfig) RetryConfig(shouldRetry func(error) bool) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: c.RetryMaxAttempts,
		Backoff: resilience.Backoff{
			Base:   c.RetryBaseDelay,
			Max:    c.RetryMaxDelay,
			Factor: 2,
			Jitter: 0.2,
		},
		ShouldRetry: shouldRetry,
	}
}

// CircuitBreakerConfig возвращает настройки Circuit Breaker.
func (c *ResilienceConfig) CircuitBreakerConfig(isFailure func(error) bool) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		ErrorThreshold:   c.BreakerErrorThreshold,
		Timeout:          c.BreakerTimeout,
		SuccessThreshold: c.BreakerSuccessThreshold,
		IsFailure:        isFailure,
	}
}
