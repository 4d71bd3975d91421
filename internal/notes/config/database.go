package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PostgresConfig содержит параметры подключения к базе данных.
// Учетные данные значений по умолчанию не имеют.
type PostgresConfig struct {
	Host              string        `yaml:"host" env:"NOTES_POSTGRES_HOST" env-description:"database host (required)"`
	Port              int           `yaml:"port" env:"NOTES_POSTGRES_PORT" env-description:"database port (required)"`
	Database          string        `yaml:"database" env:"NOTES_POSTGRES_DB" env-description:"database name (required)"`
	User              string        `yaml:"user" env:"NOTES_POSTGRES_USER" env-description:"database user (required)"`
	Password          string        `yaml:"password" env:"NOTES_POSTGRES_PASSWORD" env-description:"database password (required)"`
	SSLMode           string        `yaml:"ssl_mode" env:"NOTES_POSTGRES_SSLMODE" env-default:"disable" env-description:"libpq sslmode"`
	MinConn           int           `yaml:"min_conn" env:"NOTES_POSTGRES_MIN_CONN" env-default:"1" env-description:"minimum pool connections"`
	MaxConn           int           `yaml:"max_conn" env:"NOTES_POSTGRES_MAX_CONN" env-default:"10" env-description:"maximum pool connections"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" env:"NOTES_POSTGRES_CONNECT_TIMEOUT" env-default:"5s" env-description:"timeout for establishing one connection"`
	QueryTimeout      time.Duration `yaml:"query_timeout" env:"NOTES_POSTGRES_QUERY_TIMEOUT" env-default:"5s" env-description:"upper bound for a single storage operation"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" env:"NOTES_POSTGRES_HEALTH_CHECK_PERIOD" env-default:"30s" env-description:"pool idle connection health check period"`
}

// GetDSN возвращает строку подключения в формате key=value для pgx.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quoteDSNValue(p.Host), p.Port, quoteDSNValue(p.User), quoteDSNValue(p.Password),
		quoteDSNValue(p.Database), quoteDSNValue(p.SSLMode))
}

// GetConnectionURL возвращает URL подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// String возвращает описание подключения без пароля.
func (p *PostgresConfig) String() string {
	return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s",
		p.User, net.JoinHostPort(p.Host, strconv.Itoa(p.Port)), p.Database, p.SSLMode)
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
