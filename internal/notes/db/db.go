// Package db управляет подключением сервиса заметок к базе данных:
// начальное подключение с экспоненциальным отступом, миграции и
// наблюдение за доступностью базы.
package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"securenotes/internal/notes/config"
	"securenotes/pkg/db/postgres"
	"securenotes/pkg/logger"
	"securenotes/pkg/resilience"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing notes database"
	LogConnectAttempt    = "database connection attempt failed"
	LogConnected         = "database connection established"
	LogMigrationStarting = "starting database migrations"
	LogRetriesExhausted  = "database connection attempts exhausted, service stays not ready"
	LogProbeFailed       = "database readiness probe failed"
	LogReadinessChanged  = "database readiness changed"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply notes database migrations"
	ErrDBConnection      = "failed to create notes database pool"
	ErrGetPath           = "failed to get path"
	ErrDBCheckConnection = "error checking the database connection"
)

const filePrefix = "file://"

// ErrRetriesExhausted возвращается, когда база не ответила за отведенное число попыток.
var ErrRetriesExhausted = errors.New("database connection retries exhausted")

// Pinger проверяет доступность базы.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrateFunc применяет миграции из migrationsPath к базе по connectionURL.
type MigrateFunc func(ctx context.Context, connectionURL, migrationsPath string) error

// Settings задает параметры подключения и наблюдения.
type Settings struct {
	ConnectionURL  string
	MigrationsPath string
	Backoff        resilience.Backoff
	MaxAttempts    int
	ProbeInterval  time.Duration
	PingTimeout    time.Duration
}

// Gateway владеет пулом соединений и знает, готова ли база обслуживать запросы.
type Gateway struct {
	database *postgres.Database
	pinger   Pinger
	migrate  MigrateFunc
	settings Settings

	ready    atomic.Bool
	migrated atomic.Bool
	recheck  chan struct{}

	mu        sync.Mutex
	listeners []func(ctx context.Context, ready bool)
}

// Option настраивает Gateway.
type Option func(*Gateway)

// WithMigrateFunc подменяет применение миграций.
func WithMigrateFunc(fn MigrateFunc) Option {
	return func(g *Gateway) {
		g.migrate = fn
	}
}

// New создает пул соединений без обращения к базе. Ошибка означает
// некорректную конфигурацию подключения.
func New(ctx context.Context, cfg *config.PostgresConfig, res *config.ResilienceConfig, migrationsDir string) (*Gateway, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("postgres", cfg.String()),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsPath, err := migrationsURL(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), postgres.PoolOptions{
		MinConns:          cfg.MinConn,
		MaxConns:          cfg.MaxConn,
		ConnectTimeout:    cfg.ConnectTimeout,
		HealthCheckPeriod: cfg.HealthCheckPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	g := NewGateway(database, Settings{
		ConnectionURL:  cfg.GetConnectionURL(),
		MigrationsPath: migrationsPath,
		Backoff:        res.ConnectBackoff(),
		MaxAttempts:    res.ConnectMaxAttempts,
		ProbeInterval:  res.ProbeInterval,
		PingTimeout:    cfg.ConnectTimeout,
	})
	g.database = database
	return g, nil
}

// NewGateway создает Gateway поверх произвольного Pinger.
func NewGateway(pinger Pinger, settings Settings, opts ...Option) *Gateway {
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}
	if settings.ProbeInterval <= 0 {
		settings.ProbeInterval = 5 * time.Second
	}
	if settings.PingTimeout <= 0 {
		settings.PingTimeout = 5 * time.Second
	}

	g := &Gateway{
		pinger:   pinger,
		migrate:  postgres.MigrateDSN,
		settings: settings,
		recheck:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func migrationsURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filePrefix + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filePrefix + absPath, nil
}

// Ready сообщает, что база доступна и схема применена.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

// OnStateChange регистрирует обработчик смены готовности.
func (g *Gateway) OnStateChange(fn func(ctx context.Context, ready bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Gateway) setReady(ctx context.Context, ready bool) {
	if g.ready.Swap(ready) == ready {
		return
	}

	logger.Log(ctx).Info(ctx, LogReadinessChanged, zap.Bool("ready", ready))

	g.mu.Lock()
	listeners := append([]func(context.Context, bool){}, g.listeners...)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, ready)
	}
}

// ReportFailure сообщает о сбое хранилища, замеченном при обслуживании запроса.
// Gateway сразу становится не готов, Monitor проверяет базу без ожидания интервала.
func (g *Gateway) ReportFailure(ctx context.Context) {
	g.setReady(ctx, false)
	select {
	case g.recheck <- struct{}{}:
	default:
	}
}

// establish проверяет соединение и при первом успехе применяет миграции.
func (g *Gateway) establish(ctx context.Context) error {
	if err := g.Ping(ctx); err != nil {
		return err
	}

	if !g.migrated.Load() {
		logger.Log(ctx).Info(ctx, LogMigrationStarting,
			zap.String("migrations_path", g.settings.MigrationsPath))
		if err := g.migrate(ctx, g.settings.ConnectionURL, g.settings.MigrationsPath); err != nil {
			return fmt.Errorf("%s: %w", ErrDBMigrations, err)
		}
		g.migrated.Store(true)
	}

	g.setReady(ctx, true)
	return nil
}

// Connect пытается установить соединение с экспоненциальным отступом.
// Пока попытки идут, Gateway не готов. Исчерпав попытки, возвращает
// ErrRetriesExhausted; процесс при этом продолжает работу.
func (g *Gateway) Connect(ctx context.Context) error {
	log := logger.Log(ctx)

	for attempt := 1; ; attempt++ {
		err := g.establish(ctx)
		if err == nil {
			log.Info(ctx, LogConnected, zap.Int("attempt", attempt))
			return nil
		}
		g.setReady(ctx, false)

		if attempt >= g.settings.MaxAttempts {
			log.Error(ctx, LogRetriesExhausted, zap.Int("attempts", attempt), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
		}

		delay := g.settings.Backoff.Delay(attempt)
		log.Warn(ctx, LogConnectAttempt,
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.settings.MaxAttempts),
			zap.Duration("next_delay", delay),
			zap.Error(err))

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Monitor периодически проверяет базу. При сбое Gateway становится не готов
// и повторяет цикл подключения; после исчерпания попыток проверки
// продолжаются с максимальным интервалом отступа.
func (g *Gateway) Monitor(ctx context.Context) {
	log := logger.Log(ctx)
	interval := g.settings.ProbeInterval

	for {
		if err := g.wait(ctx, interval); err != nil {
			return
		}

		err := g.establish(ctx)
		if err == nil {
			interval = g.settings.ProbeInterval
			continue
		}

		log.Warn(ctx, LogProbeFailed, zap.Error(err))
		g.setReady(ctx, false)

		if err := g.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			interval = g.idleInterval()
			continue
		}
		interval = g.settings.ProbeInterval
	}
}

func (g *Gateway) idleInterval() time.Duration {
	if g.settings.Backoff.Max > 0 {
		return g.settings.Backoff.Max
	}
	return g.settings.ProbeInterval
}

// Run подключается к базе и затем наблюдает за ней до отмены ctx.
func (g *Gateway) Run(ctx context.Context) {
	if err := g.Connect(ctx); err != nil && ctx.Err() != nil {
		return
	}
	g.Monitor(ctx)
}

// Ping проверяет соединение с базой данных.
func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.settings.PingTimeout)
	defer cancel()

	if err := g.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}

// Pool возвращает пул соединений с базой данных.
func (g *Gateway) Pool() *pgxpool.Pool {
	if g.database == nil {
		return nil
	}
	return g.database.Pool()
}

// Close закрывает соединение с базой данных.
func (g *Gateway) Close(ctx context.Context) {
	g.setReady(ctx, false)
	if g.database != nil {
		g.database.Close(ctx)
	}
}

// wait ждет интервал проверки или внеочередной запрос из ReportFailure.
func (g *Gateway) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-g.recheck:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
