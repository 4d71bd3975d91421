package config

import (
	"net"
	"strconv"
	"time"
)

// HTTPConfig содержит настройки HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"NOTES_HTTP_HOST" env-default:"0.0.0.0" env-description:"listen address"`
	Port         int           `yaml:"port" env:"NOTES_HTTP_PORT" env-description:"listen port (required)"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"NOTES_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTES_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"NOTES_HTTP_IDLE_TIMEOUT" env-default:"60s"`
	BodyLimit    int           `yaml:"body_limit" env:"NOTES_HTTP_BODY_LIMIT" env-default:"1048576" env-description:"maximum request body size in bytes"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
