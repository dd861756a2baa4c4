package utils

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthPollInterval is how often WaitForHealthy asks the server.
const HealthPollInterval = 500 * time.Millisecond

// WaitForHealthy polls the gRPC health service at addr until it reports
// SERVING or ctx is done.
func WaitForHealthy(ctx context.Context, addr string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() {
		_ = conn.Close() // Best effort close
	}()

	healthClient := healthpb.NewHealthClient(conn)
	ticker := time.NewTicker(HealthPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("health check timeout for %s: %w", addr, lastErr)
			}
			return fmt.Errorf("health check timeout for %s: %w", addr, ctx.Err())
		case <-ticker.C:
			resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
			if err != nil {
				lastErr = err
				continue
			}
			if resp.Status == healthpb.HealthCheckResponse_SERVING {
				return nil
			}
			lastErr = fmt.Errorf("status %s", resp.Status)
		}
	}
}
