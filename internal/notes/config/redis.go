package config

import (
	"net"
	"strconv"
	"time"
)

// RedisConfig содержит параметры подключения к Redis.
type RedisConfig struct {
	Host         string        `yaml:"host" env:"NOTES_REDIS_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"NOTES_REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"NOTES_REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"NOTES_REDIS_DB" env-default:"0"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"NOTES_REDIS_DIAL_TIMEOUT" env-default:"2s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"NOTES_REDIS_READ_TIMEOUT" env-default:"500ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTES_REDIS_WRITE_TIMEOUT" env-default:"500ms"`
	PoolSize     int           `yaml:"pool_size" env:"NOTES_REDIS_POOL_SIZE" env-default:"10"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RateLimitConfig содержит настройки ограничения частоты запросов.
type RateLimitConfig struct {
	Enabled   bool          `yaml:"enabled" env:"NOTES_RATE_LIMIT_ENABLED" env-default:"false"`
	Requests  int           `yaml:"requests" env:"NOTES_RATE_LIMIT_REQUESTS" env-default:"120" env-description:"requests allowed per principal per window"`
	Window    time.Duration `yaml:"window" env:"NOTES_RATE_LIMIT_WINDOW" env-default:"1m"`
	KeyPrefix string        `yaml:"key_prefix" env:"NOTES_RATE_LIMIT_KEY_PREFIX" env-default:"notes:ratelimit:"`
	Redis     RedisConfig   `yaml:"redis"`
}
