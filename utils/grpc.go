package utils

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/reflection"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCRegisterFunc registers extra services on a server before it starts.
type GRPCRegisterFunc func(grpc.ServiceRegistrar)

// NewGRPCServer builds a server with reflection and a health service that
// reports SERVING for the whole server.
func NewGRPCServer(register GRPCRegisterFunc, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(opts...)
	if register != nil {
		register(srv)
	}
	reflection.Register(srv)

	healthcheck := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthcheck)
	healthcheck.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return srv, healthcheck
}

// StartGRPCServer listens on port and serves until the server stops.
func StartGRPCServer(port int, register GRPCRegisterFunc, opts ...grpc.ServerOption) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv, _ := NewGRPCServer(register, opts...)
	if err := srv.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
