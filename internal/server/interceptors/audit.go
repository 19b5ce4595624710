package interceptors

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"juribank/backend/internal/audit"
)

type auditMetadata struct {
	StatusCode string `json:"status_code"`
}

// AuditUnary returns a unary server interceptor that records an audit log entry after each RPC.
// skipMethods is the set of full method names to not audit (e.g. health Check).
// Logging is best-effort: failures are logged by the logger and do not fail the RPC.
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		sessionID, _ := GetSessionID(ctx)
		ar := audit.ParseFullMethod(info.FullMethod)
		meta, _ := json.Marshal(auditMetadata{StatusCode: status.Code(err).String()})
		logger.LogEvent(ctx, sessionID, ar.Action, ar.Resource, string(meta))
		return resp, err
	}
}
