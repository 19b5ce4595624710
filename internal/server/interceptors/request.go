package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"juribank/backend/internal/session/domain"
)

// Metadata keys read from inbound calls. gRPC lowercases header names.
const (
	mdForwardedFor   = "x-forwarded-for"
	mdRealIP         = "x-real-ip"
	mdUserAgent      = "user-agent"
	mdAcceptLanguage = "accept-language"
	mdAcceptEncoding = "accept-encoding"
	mdAccept         = "accept"
)

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if s := firstValue(md, mdForwardedFor); s != "" {
			if i := strings.Index(s, ","); i > 0 {
				s = strings.TrimSpace(s[:i])
			}
			return s
		}
		if s := firstValue(md, mdRealIP); s != "" {
			return s
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}

// RequestContextFrom builds the session request context from the client address and the
// fingerprint headers forwarded in metadata.
func RequestContextFrom(ctx context.Context) domain.RequestContext {
	rc := domain.RequestContext{IP: ClientIP(ctx)}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return rc
	}
	rc.UserAgent = firstValue(md, mdUserAgent)
	rc.AcceptLanguage = firstValue(md, mdAcceptLanguage)
	rc.AcceptEncoding = firstValue(md, mdAcceptEncoding)
	rc.Accept = firstValue(md, mdAccept)
	return rc
}

func firstValue(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
