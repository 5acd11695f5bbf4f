package infra_grpc_health

import (
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name probes may ask about besides the overall "".
const Service = "movie-picker"

type Server struct {
	grpc   *grpc.Server
	health *health.Server

	logger *slog.Logger
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	grpc_health_v1.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(Service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve reports SERVING and blocks until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(Service, grpc_health_v1.HealthCheckResponse_SERVING)

	s.logger.Info("grpc health listening", slog.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Drain flips every service to NOT_SERVING while still answering probes.
func (s *Server) Drain() {
	s.health.Shutdown()
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
