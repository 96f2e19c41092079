package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

func startServer(t *testing.T) (*Server, grpc_health_v1.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer("guvenoto-listing", logger.NewNop())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, grpc_health_v1.NewHealthClient(conn)
}

func checkStatus(client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestServer_HealthStatus(t *testing.T) {
	srv, client := startServer(t)

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, checkStatus(client, "guvenoto-listing"))

	srv.SetServing(true)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, checkStatus(client, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, checkStatus(client, "guvenoto-listing"))
}

func TestServer_Monitor(t *testing.T) {
	srv, client := startServer(t)

	var healthy atomic.Bool
	healthy.Store(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Monitor(ctx, 10*time.Millisecond, func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("mongo unreachable")
	})

	assert.Eventually(t, func() bool {
		return checkStatus(client, "guvenoto-listing") == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	healthy.Store(false)
	assert.Eventually(t, func() bool {
		return checkStatus(client, "guvenoto-listing") == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)
}
