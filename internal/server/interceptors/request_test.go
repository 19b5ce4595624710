package interceptors

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

func TestClientIP(t *testing.T) {
	peerCtx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 5555},
	})
	testCases := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"no metadata or peer", context.Background(), "unknown"},
		{"peer", peerCtx, "10.1.2.3"},
		{
			"forwarded for chain",
			metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-forwarded-for", "203.0.113.1, 10.0.0.1")),
			"203.0.113.1",
		},
		{
			"real ip",
			metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-real-ip", " 203.0.113.2 ")),
			"203.0.113.2",
		},
		{
			"forwarded for wins over real ip",
			metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-real-ip", "203.0.113.2", "x-forwarded-for", "203.0.113.3")),
			"203.0.113.3",
		},
		{
			"empty header falls back to peer",
			metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-forwarded-for", " ")),
			"10.1.2.3",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIP(tc.ctx); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestContextFrom(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"x-real-ip", "198.51.100.7",
		"user-agent", "Mozilla/5.0",
		"accept-language", "en-GB",
		"accept-encoding", "gzip",
		"accept", "text/html",
	))
	rc := RequestContextFrom(ctx)
	if rc.IP != "198.51.100.7" {
		t.Errorf("IP = %q", rc.IP)
	}
	if rc.UserAgent != "Mozilla/5.0" || rc.AcceptLanguage != "en-GB" || rc.AcceptEncoding != "gzip" || rc.Accept != "text/html" {
		t.Errorf("headers = %+v", rc)
	}

	bare := RequestContextFrom(context.Background())
	if bare.IP != "unknown" || bare.UserAgent != "" {
		t.Errorf("bare = %+v", bare)
	}
}
