package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"juribank/backend/internal/telemetry"
	telemetrydomain "juribank/backend/internal/telemetry/domain"
)

const telemetrySource = "grpc_interceptor"

// IPHasher derives the stored form of a client address.
type IPHasher interface {
	HashIP(ip string) string
}

// TelemetryUnary returns a unary server interceptor that emits a grpc_request event after each RPC.
// Best-effort: failures are logged and do not fail the RPC. If emitter is nil, the interceptor no-ops.
// skipMethods is the set of full method names to not emit (e.g. health Check).
// The client address is reported only as its hash.
func TelemetryUnary(emitter telemetry.EventEmitter, hasher IPHasher, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		var ipHash string
		if ip := ClientIP(ctx); hasher != nil && ip != "unknown" {
			ipHash = hasher.HashIP(ip)
		}
		sessionID, _ := GetSessionID(ctx)
		event := telemetry.NewEvent(telemetrydomain.EventGRPCRequest, telemetrySource, sessionID, ipHash, map[string]any{
			"full_method": info.FullMethod,
			"status_code": status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		telemetry.EmitAsync(emitter, ctx, event)
		return resp, err
	}
}
