package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to health checks for the portal as a whole.
const ServiceName = "taskportal.v1.Portal"

// Pinger is anything whose reachability decides whether we are serving.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type GRPCServer struct {
	health *health.Server
	deps   Pinger
	every  time.Duration
	logger *slog.Logger
	server *grpc.Server
}

func NewGRPCServer(deps Pinger, every time.Duration, logger *slog.Logger) *GRPCServer {
	s := &GRPCServer{
		health: health.NewServer(),
		deps:   deps,
		every:  every,
		logger: logger,
	}
	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("grpc server listening", slog.String("addr", addr))
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("grpc call",
		slog.String("method", info.FullMethod),
		slog.Duration("duration", time.Since(start)),
		slog.Any("err", err))
	return resp, err
}

// check pings the dependencies once and publishes the result.
func (s *GRPCServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.deps.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", slog.Any("err", err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// WatchHealth обновляет статус health до отмены ctx
func (s *GRPCServer) WatchHealth(ctx context.Context) {
	s.check(ctx)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}
