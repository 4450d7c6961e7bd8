package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	domain "github.com/oshokin/gas-alarm-notifier/internal/domain/alarm"
)

// check queries the embedded health service directly, without a listener.
func check(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: service,
	})
	require.NoError(t, err)

	return resp.GetStatus()
}

// TestSetAlarmState verifies the detector service mirrors the alarm state
// while daemon liveness stays SERVING.
func TestSetAlarmState(t *testing.T) {
	t.Parallel()

	s := NewServer()

	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, ""))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, DetectorService))

	s.SetAlarmState(domain.StateAsserted)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, DetectorService))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, ""))

	s.SetAlarmState(domain.StateNormal)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, DetectorService))
}
