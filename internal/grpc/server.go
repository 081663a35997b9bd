package grpcserver

import (
	"context"
	"net"

	fleetv1 "fleetHQ/api/fleet/v1"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/config"
	"fleetHQ/internal/scheduling"
	"fleetHQ/repository"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewServer builds a gRPC server exposing FleetService and the standard
// health service. Every FleetService call is authenticated against users.
func NewServer(secret string, users repository.UserStore, svc *scheduling.Service) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		UnaryLoggingInterceptor(),
		auth.NewUnaryAuthInterceptor(secret, users, healthCheckMethod),
	))
	fleetv1.RegisterFleetServiceServer(srv, &FleetServer{Svc: svc})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(fleetv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, users repository.UserStore, svc *scheduling.Service) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the server.
	srv := NewServer(cfg.Auth.JWTSecret, users, svc)

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
