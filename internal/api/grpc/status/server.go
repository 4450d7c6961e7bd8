package status

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	domain "github.com/oshokin/gas-alarm-notifier/internal/domain/alarm"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

// DetectorService is the named health service that mirrors the alarm state:
// NOT_SERVING while the alarm is asserted, SERVING otherwise. The unnamed
// service reports plain daemon liveness.
const DetectorService = "gasalarm.detector"

// Server exposes the daemon's liveness and alarm state over the stock gRPC
// health service, so site supervision can probe both with any health checker.
type Server struct {
	health *health.Server
}

// NewServer creates the status server in the liveness-only SERVING state.
func NewServer() *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(DetectorService, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		health: hs,
	}
}

// SetAlarmState mirrors the confirmed alarm state into the detector service.
func (s *Server) SetAlarmState(state domain.State) {
	serving := healthpb.HealthCheckResponse_SERVING
	if state.Asserted() {
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus(DetectorService, serving)
}

// Run serves the health API on addr and blocks until the context is
// canceled or the server stops.
func (s *Server) Run(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, s.health)

	logger.InfoKV(ctx, "Status server listening", "listen_address", addr)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down status server")
		s.health.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve status: %w", err)
	}

	<-done
	logger.Info(ctx, "Status server stopped")

	return nil
}
