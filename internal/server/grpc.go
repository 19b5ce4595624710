package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	anonsessionv1 "juribank/backend/api/anonsession/v1"
	"juribank/backend/internal/audit"
	healthhandler "juribank/backend/internal/health/handler"
	"juribank/backend/internal/server/interceptors"
	sessionhandler "juribank/backend/internal/session/handler"
	"juribank/backend/internal/telemetry"
)

// Deps holds service dependencies for gRPC handlers and interceptors.
type Deps struct {
	// Registry backs AnonymousSessionService. If nil, session RPCs return Unimplemented.
	Registry sessionhandler.Registry
	// Tokens verifies bearer tokens in the auth interceptor. If nil, no auth interceptor is installed
	// and session-scoped RPCs answer Unauthenticated.
	Tokens interceptors.TokenVerifier
	// Hasher hashes client addresses for request telemetry.
	Hasher interceptors.IPHasher
	// Events receives grpc_request events. If nil, requests are not reported.
	Events telemetry.EventEmitter
	// AuditLogger records one entry per RPC. If nil, no RPCs are audited.
	AuditLogger audit.AuditLogger
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, Check skips the DB ping.
	HealthPinger healthhandler.Pinger
	// DisableStatsHandler omits the otelgrpc stats handler (tests).
	DisableStatsHandler bool
}

// PublicMethods returns the full method names callable without a bearer token.
func PublicMethods() map[string]bool {
	return map[string]bool{
		anonsessionv1.AnonymousSessionService_CreateSession_FullMethodName:   true,
		anonsessionv1.AnonymousSessionService_ValidateSession_FullMethodName: true,
		healthpb.Health_Check_FullMethodName:                                 true,
	}
}

// quietMethods are neither audited nor reported as request telemetry.
func quietMethods() map[string]bool {
	return map[string]bool{healthpb.Health_Check_FullMethodName: true}
}

// ServerOptions returns the interceptor chain and stats handler for deps. Auth runs first so
// telemetry and audit see the caller's session id.
func ServerOptions(deps Deps) []grpc.ServerOption {
	var chain []grpc.UnaryServerInterceptor
	if deps.Tokens != nil {
		chain = append(chain, interceptors.AuthUnary(deps.Tokens, PublicMethods()))
	}
	if deps.Events != nil {
		chain = append(chain, interceptors.TelemetryUnary(deps.Events, deps.Hasher, quietMethods()))
	}
	if deps.AuditLogger != nil {
		chain = append(chain, interceptors.AuditUnary(deps.AuditLogger, quietMethods()))
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}
	if !deps.DisableStatsHandler {
		opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	return opts
}

// NewGRPCServer returns a gRPC server with the interceptor chain installed and every service registered.
func NewGRPCServer(deps Deps) *grpc.Server {
	s := grpc.NewServer(ServerOptions(deps)...)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - AnonymousSessionService → internal/session/handler
//   - grpc.health.v1.Health   → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	anonsessionv1.RegisterAnonymousSessionServiceServer(s, sessionhandler.NewServer(deps.Registry))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, anonsessionv1.ServiceName))
}
