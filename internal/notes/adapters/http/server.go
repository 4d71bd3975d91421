package http

import (
	"context"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/config"
	"securenotes/pkg/logger"
)

// AppName - имя приложения fiber.
const AppName = "securenotes"

// Server представляет HTTP сервер API заметок.
type Server struct {
	app     *fiber.App
	address string
}

// NewApp создает приложение fiber с настроенными маршрутами.
func NewApp(cfg *config.HTTPConfig, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      AppName,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorHandler: response.ErrorHandler,
	})

	SetupRouter(app, deps)
	return app
}

// New создает новый HTTP сервер.
func New(cfg *config.HTTPConfig, deps Dependencies) *Server {
	return &Server{
		app:     NewApp(cfg, deps),
		address: cfg.GetAddress(),
	}
}

// Start занимает адрес и обслуживает запросы в отдельной горутине.
// Ошибка означает, что адрес занять не удалось.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	log.Info(ctx, "HTTP server started", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.app.Listener(listener, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.Error(ctx, "HTTP server stopped with error", zap.Error(err))
		}
	}()
	return nil
}

// Stop дожидается завершения текущих запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, "stopping HTTP server")
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
