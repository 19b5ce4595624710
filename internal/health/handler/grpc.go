package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// pingTimeout bounds the readiness ping so a stuck database cannot hang the probe.
const pingTimeout = 2 * time.Second

// Pinger is used for readiness (e.g. *sql.DB). PingContext is called on each Check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server implements the standard grpc.health.v1 Health service for readiness/liveness.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger   Pinger
	services map[string]bool
}

// NewServer returns a Health server. pinger may be nil, in which case the database is not
// checked. services lists the service names Check answers for besides the empty name.
func NewServer(pinger Pinger, services ...string) *Server {
	known := map[string]bool{"": true}
	for _, s := range services {
		known[s] = true
	}
	return &Server{pinger: pinger, services: known}
}

// Check reports SERVING, or NOT_SERVING when the database ping fails. Unknown service names
// return NotFound.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if !s.services[req.GetService()] {
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if s.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.pinger.PingContext(pingCtx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
