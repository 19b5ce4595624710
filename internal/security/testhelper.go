package security

import "time"

// Test secret and salt for unit tests only. Do not use in production.
const (
	testSecret = "test-only-session-secret-0123456789abcdef"
	testSalt   = "test-only-ip-salt"
)

// NewTestTokenCodec returns a TokenCodec using the embedded test secret.
// For unit tests only. Callers must not use in production.
func NewTestTokenCodec() (*TokenCodec, error) {
	return NewTokenCodec([]byte(testSecret), "test-issuer", "test-audience")
}

// NewTestTokenCodecWithClock is NewTestTokenCodec with an injected clock for expiry checks.
func NewTestTokenCodecWithClock(now func() time.Time) (*TokenCodec, error) {
	c, err := NewTestTokenCodec()
	if err != nil {
		return nil, err
	}
	c.nowF = now
	return c, nil
}

// NewTestHasher returns a Hasher keyed with the embedded test salt.
func NewTestHasher() *Hasher {
	h, _ := NewHasher(testSalt)
	return h
}
