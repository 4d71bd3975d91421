// Package grpc обслуживает протокол grpc.health.v1 для проб оркестратора.
package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"securenotes/internal/notes/config"
	"securenotes/pkg/logger"
)

// ServiceName - имя сервиса в протоколе health.
const ServiceName = "notes"

// Server представляет gRPC сервер протокола health.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	address  string
	listener net.Listener
}

// New создает новый экземпляр gRPC сервера. Пока не вызван SetServing,
// сервис отвечает NOT_SERVING.
func New(cfg *config.GRPCConfig) *Server {
	s := &Server{
		server:  grpc.NewServer(),
		health:  health.NewServer(),
		address: cfg.GetAddress(),
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

// SetServing переключает статус сервиса notes и сервера в целом.
func (s *Server) SetServing(ctx context.Context, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	logger.Log(ctx).Info(ctx, "gRPC health status changed", zap.Stringer("status", status))
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Start запускает gRPC сервер на адресе из конфигурации.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.Serve(ctx, listener)
	return nil
}

// Serve обслуживает запросы на готовом listener в отдельной горутине.
func (s *Server) Serve(ctx context.Context, listener net.Listener) {
	log := logger.Log(ctx)
	s.listener = listener

	log.Info(ctx, "gRPC health server started", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.Error(ctx, "failed to serve gRPC", zap.Error(err))
		}
	}()
}

// Stop останавливает gRPC сервер.
func (s *Server) Stop(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, "stopping gRPC server")

	s.health.Shutdown()
	s.server.GracefulStop()
	return nil
}
