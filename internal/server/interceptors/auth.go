package interceptors

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"juribank/backend/internal/security"
)

const bearerPrefix = "bearer "

// TokenVerifier resolves a bearer token to its session id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthUnary returns a unary server interceptor that validates the Bearer session token
// from gRPC metadata and sets session_id in context for protected RPCs.
// publicMethods is the set of full method names that do not require a Bearer token
// (e.g. CreateSession, ValidateSession, health Check).
// An authentic token past its expiry still yields the session id so the handler can retire
// the session and answer with the expiry error.
func AuthUnary(tokens TokenVerifier, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := ExtractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		sessionID, err := tokens.Verify(token)
		if err != nil && !errors.Is(err, security.ErrTokenExpired) {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		return handler(WithSessionID(ctx, sessionID), req)
	}
}

// ExtractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func ExtractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
