package server

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"applytrack/internal/grpc/interceptors"
	"applytrack/internal/logging"
)

// Probe checks one dependency; a nil error means it is usable
type Probe func(ctx context.Context) error

// Server serves the standard gRPC health service and reflection
type Server struct {
	grpcServer *grpc.Server
	health     *HealthService
	logger     logging.Logger
}

func NewServer(probes map[string]Probe) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(),
			interceptors.LoggingInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(),
			interceptors.StreamLoggingInterceptor(),
		),
	)

	health := NewHealthService(probes)
	healthpb.RegisterHealthServer(grpcServer, health)

	// Enable reflection for debugging
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     health,
		logger:     logging.GetGlobalLogger().WithField("component", "grpc"),
	}
}

// Start serves on lis until Stop is called
func (s *Server) Start(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", map[string]interface{}{"address": lis.Addr().String()})
	return s.grpcServer.Serve(lis)
}

// Stop waits for in-flight calls, up to the context deadline, then forces the stop
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down gRPC server...")

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}
