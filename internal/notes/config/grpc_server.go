package config

import (
	"net"
	"strconv"
)

// GRPCConfig содержит настройки gRPC сервера протокола health.
type GRPCConfig struct {
	Host       string `yaml:"host" env:"NOTES_GRPC_HOST" env-default:"0.0.0.0"`
	HealthPort int    `yaml:"health_port" env:"NOTES_GRPC_HEALTH_PORT" env-default:"0" env-description:"gRPC health protocol port, 0 disables it"`
}

// Enabled сообщает, нужно ли запускать gRPC сервер.
func (g *GRPCConfig) Enabled() bool {
	return g.HealthPort > 0
}

// GetAddress возвращает адрес gRPC сервера.
func (g *GRPCConfig) GetAddress() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(g.HealthPort))
}
