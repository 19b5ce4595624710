package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenCodec_SignAndVerify(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	now := time.Now().UTC()
	token, err := c.Sign("s1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	sid, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sid != "s1" {
		t.Errorf("sessionID = %q, want %q", sid, "s1")
	}
}

func TestTokenCodec_SignEmptySessionID(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	now := time.Now()
	if _, err := c.Sign("", now, now.Add(time.Hour)); err != ErrInvalidToken {
		t.Errorf("Sign empty session id: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyInvalid(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid-token"},
		{"three dots", "a.b.c"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Verify(tc.token); err != ErrInvalidToken {
				t.Errorf("Verify(%q): want ErrInvalidToken, got %v", tc.token, err)
			}
		})
	}
}

func TestTokenCodec_VerifyTampered(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	now := time.Now()
	token, err := c.Sign("s1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := c.Verify(strings.Join(parts, ".")); err != ErrInvalidToken {
		t.Errorf("Verify tampered: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyOtherSecret(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	other, err := NewTokenCodec([]byte("another-secret-that-is-long-enough-xx"), "test-issuer", "test-audience")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	now := time.Now()
	token, err := other.Sign("s1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := c.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify foreign token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyWrongIssuerAndAudience(t *testing.T) {
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	now := time.Now()
	testCases := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"issuer", "someone-else", "test-audience"},
		{"audience", "test-issuer", "someone-else"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewTokenCodec([]byte(testSecret), tc.issuer, tc.audience)
			if err != nil {
				t.Fatalf("NewTokenCodec: %v", err)
			}
			token, err := other.Sign("s1", now, now.Add(time.Hour))
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if _, err := c.Verify(token); err != ErrInvalidToken {
				t.Errorf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenCodec_VerifyRejectsNonAnonymousClaims(t *testing.T) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-audience"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		SessionID: "s1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	c, err := NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	if _, err := c.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify without anon marker: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyExpiredReturnsSessionID(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	c, err := NewTestTokenCodecWithClock(func() time.Time { return clock })
	if err != nil {
		t.Fatalf("NewTestTokenCodecWithClock: %v", err)
	}
	token, err := c.Sign("s1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	clock = now.Add(2 * time.Hour)
	sid, err := c.Verify(token)
	if err != ErrTokenExpired {
		t.Fatalf("Verify expired: want ErrTokenExpired, got %v", err)
	}
	if sid != "s1" {
		t.Errorf("sessionID = %q, want %q", sid, "s1")
	}
}

func TestNewTokenCodec_WeakSecret(t *testing.T) {
	if _, err := NewTokenCodec([]byte("short"), "i", "a"); err != ErrWeakSecret {
		t.Errorf("want ErrWeakSecret, got %v", err)
	}
}
