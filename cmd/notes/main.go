// Package main реализует точку входа службы заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	grpcAdapter "securenotes/internal/notes/adapters/grpc"
	httpAdapter "securenotes/internal/notes/adapters/http"
	"securenotes/internal/notes/adapters/postgres"
	"securenotes/internal/notes/adapters/redis"
	"securenotes/internal/notes/adapters/services"
	"securenotes/internal/notes/app"
	"securenotes/internal/notes/config"
	"securenotes/internal/notes/db"
	"securenotes/internal/notes/health"
	portservices "securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
	"securenotes/pkg/resilience"
	"securenotes/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTES_LOGGER_MODE"
	EnvLoggerLevel = "NOTES_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrStartHTTP            = "failed to start HTTP server"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "note service started"
	LogServiceShutdownDone = "note service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingGRPC        = "stopping gRPC server"
	LogClosingLimiter      = "closing rate limiter"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogInitGRPCServer      = "initializing gRPC health server"
)

const policyName = "postgres"

type flags struct {
	envFile    string
	migrations string
	printEnv   bool
}

func parseFlags() flags {
	var f flags
	pflag.StringVar(&f.envFile, "env-file", "", "dotenv file loaded before reading the environment")
	pflag.StringVar(&f.migrations, "migrations", "./migrations/notes", "directory with SQL migrations")
	pflag.BoolVar(&f.printEnv, "print-env", false, "print supported environment variables and exit")
	pflag.Parse()
	return f
}

func main() {
	opts := parseFlags()

	if opts.printEnv {
		description, err := config.Description()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(description)
		return
	}

	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx, opts.envFile)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		gateway, err := db.New(ctx, &cfg.Postgres, &cfg.Resilience, opts.migrations)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitRepo)
		policy := resilience.NewPolicy(policyName,
			cfg.Resilience.RetryConfig(postgres.IsRetryable),
			cfg.Resilience.CircuitBreakerConfig(postgres.IsConnectivityFailure),
		)
		noteRepo := postgres.NewNoteRepository(gateway.Pool(),
			postgres.WithQueryTimeout(cfg.Postgres.QueryTimeout),
			postgres.WithPolicy(policy),
			postgres.WithFailureObserver(gateway.ReportFailure),
		)

		log.Info(ctx, LogInitServices)
		tokenService := services.NewJWT(cfg.JWT.Secret, services.JWTOptions{
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			Leeway:   cfg.JWT.Leeway,
		})

		var (
			limiter     portservices.RateLimiter
			redisClient *redis.RateLimiter
		)
		if cfg.RateLimit.Enabled {
			redisClient = redis.NewRateLimiter(ctx, &cfg.RateLimit)
			limiter = redisClient
		}

		log.Info(ctx, LogInitUseCases)
		noteUseCase := app.NewNoteUseCase(noteRepo, app.Limits{
			MaxTitleLength:    cfg.Limits.MaxTitleLength,
			MaxBodyLength:     cfg.Limits.MaxBodyLength,
			MaxCategoryLength: cfg.Limits.MaxCategoryLength,
			MaxListLimit:      cfg.Limits.MaxListLimit,
		})

		reporter := health.NewReporter(gateway)

		log.Info(ctx, LogInitHTTPServer)
		httpServer := httpAdapter.New(&cfg.HTTP, httpAdapter.Dependencies{
			Notes:    noteUseCase,
			Tokens:   tokenService,
			Reporter: reporter,
			Limiter:  limiter,
		})
		if err := httpServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartHTTP, zap.Error(err))
			exitCode = 1
			return
		}

		var grpcServer *grpcAdapter.Server
		if cfg.GRPC.Enabled() {
			log.Info(ctx, LogInitGRPCServer)
			grpcServer = grpcAdapter.New(&cfg.GRPC)
			gateway.OnStateChange(grpcServer.SetServing)
			if err := grpcServer.Start(ctx); err != nil {
				log.Error(ctx, ErrStartGRPC, zap.Error(err))
				_ = httpServer.Stop(ctx)
				exitCode = 1
				return
			}
		}

		runCtx, cancelRun := context.WithCancel(ctx)
		go gateway.Run(runCtx)
		reporter.MarkStarted()

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		err = shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return httpServer.Stop(ctx)
			},
			func(ctx context.Context) error {
				if grpcServer == nil {
					return nil
				}
				log.Info(ctx, LogStoppingGRPC)
				return grpcServer.Stop(ctx)
			},
			func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				log.Info(ctx, LogClosingLimiter)
				return redisClient.Close()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				cancelRun()
				gateway.Close(ctx)
				return nil
			},
		)
		if err != nil {
			log.Error(ctx, ErrShutdown, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
