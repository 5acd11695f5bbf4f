package infra_grpc_health

import (
	"context"
	"net"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type HealthInfraSuite struct {
	suite.Suite
}

func (s *HealthInfraSuite) TestLifecycle(t provider.T) {
	t.Parallel()

	lis := bufconn.Listen(1 << 20)
	server := New()
	served := make(chan error, 1)
	go func() { served <- server.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	ctx := context.Background()

	for _, service := range []string{"", Service} {
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	}

	server.Drain()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: Service})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	server.Stop()
	assert.NoError(t, <-served)
}

func TestHealthInfraSuite(t *testing.T) {
	suite.RunSuite(t, new(HealthInfraSuite))
}
