package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentlink-backend/internal/api/grpc/interceptor"
	"rentlink-backend/internal/logger"
)

// ServiceName is the health check key reported next to the overall status.
const ServiceName = "rentlink.booking"

// HealthReporter keeps the gRPC health status in line with store reachability.
type HealthReporter struct {
	health *health.Server
	ping   func(ctx context.Context) error
}

// NewServer builds the operational gRPC server: standard health service plus
// reflection for grpcurl.
func NewServer(ping func(ctx context.Context) error) (*grpc.Server, *HealthReporter) {
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Logging()))

	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	r := &HealthReporter{health: h, ping: ping}
	r.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s, r
}

func (r *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	r.health.SetServingStatus("", status)
	r.health.SetServingStatus(ServiceName, status)
}

// Check pings the store once and publishes the result.
func (r *HealthReporter) Check(ctx context.Context) {
	if r.ping == nil {
		r.set(healthpb.HealthCheckResponse_SERVING)
		return
	}
	if err := r.ping(ctx); err != nil {
		logger.WarnContext(ctx, "Health check failed", "error", err)
		r.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	r.set(healthpb.HealthCheckResponse_SERVING)
}

// Run checks every interval until ctx is done, then reports NOT_SERVING.
func (r *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	r.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.health.Shutdown()
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}
