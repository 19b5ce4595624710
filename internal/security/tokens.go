package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, unsigned by us, or carries bad claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned with a valid session id when the token is authentic but past its exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrWeakSecret is returned when the signing secret is shorter than MinSecretLength.
	ErrWeakSecret = errors.New("token secret too short")
)

// MinSecretLength is the minimum HS256 secret length in bytes.
const MinSecretLength = 32

// SessionClaims holds JWT claims for an anonymous session bearer token.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Anonymous bool   `json:"anon"`
}

// TokenCodec signs and verifies anonymous session bearer tokens with a shared HS256 secret.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	nowF     func() time.Time
}

// NewTokenCodec returns a TokenCodec for the given secret. issuer and audience are set on
// every token and checked on Verify.
func NewTokenCodec(secret []byte, issuer, audience string) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &TokenCodec{
		secret:   s,
		issuer:   issuer,
		audience: audience,
		nowF:     time.Now,
	}, nil
}

// Sign issues a token bound to sessionID. The exp claim is expiresAt, which callers set to the
// session's absolute expiry.
func (c *TokenCodec) Sign(sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidToken
	}
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sessionID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
		Anonymous: true,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks the signature, issuer, audience and anonymous marker and returns the session id.
// An authentic token past its exp returns the session id together with ErrTokenExpired so the
// caller can retire the session; every other failure returns ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != c.issuer {
		return "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == c.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrInvalidToken
	}
	if !claims.Anonymous || claims.SessionID == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	if c.nowF().After(claims.ExpiresAt.Time) {
		return claims.SessionID, ErrTokenExpired
	}
	return claims.SessionID, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
