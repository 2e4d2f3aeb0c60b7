package server

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"applytrack/internal/logging"
)

// HealthService answers grpc.health.v1.Health/Check by running every probe.
// The empty service name and "applytrack" both cover the whole server.
type HealthService struct {
	healthpb.UnimplementedHealthServer

	probes  map[string]Probe
	timeout time.Duration
	logger  logging.Logger
}

// ServiceName is the name clients may pass to Check
const ServiceName = "applytrack"

func NewHealthService(probes map[string]Probe) *HealthService {
	return &HealthService{
		probes:  probes,
		timeout: 5 * time.Second,
		logger:  logging.GetGlobalLogger().WithField("component", "grpc_health"),
	}
}

// Check implements the Check gRPC method
func (h *HealthService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			h.logger.Warn("gRPC health probe failed", map[string]interface{}{
				"probe": name,
				"error": err.Error(),
			})
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
