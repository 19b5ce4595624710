package security

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ErrEmptySalt is returned by NewHasher when no salt is configured.
var ErrEmptySalt = errors.New("ip hash salt is empty")

// Hasher derives salted one-way identifiers for network identity. Raw IPs and user agents
// go in; only the hex digests may be stored or logged.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher keyed by salt. Salts of any length are accepted; the BLAKE2b key
// is the 32-byte digest of salt.
func NewHasher(salt string) (*Hasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	k := blake2b.Sum256([]byte(salt))
	return &Hasher{key: k[:]}, nil
}

// HashIP returns the keyed hash of the client address. IPv4-mapped IPv6 and textual variants
// of one address hash identically; unparseable input is hashed as given.
func (h *Hasher) HashIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if parsed := net.ParseIP(ip); parsed != nil {
		ip = parsed.String()
	}
	return h.keyed("ip", ip)
}

// HashUserAgent returns the keyed hash of a user-agent string.
func (h *Hasher) HashUserAgent(userAgent string) string {
	return h.keyed("ua", userAgent)
}

func (h *Hasher) keyed(domain, value string) string {
	m, err := blake2b.New256(h.key)
	if err != nil {
		// only fails for keys over 64 bytes; ours is always 32
		panic(err)
	}
	m.Write([]byte(domain))
	m.Write([]byte{0})
	m.Write([]byte(value))
	return hex.EncodeToString(m.Sum(nil))
}

// Fingerprint returns an unkeyed BLAKE2b-256 digest over the given request header values.
// It is a weak consistency check between requests, not authentication.
func Fingerprint(parts ...string) string {
	m, _ := blake2b.New256(nil)
	for _, p := range parts {
		m.Write([]byte(p))
		m.Write([]byte{0})
	}
	return hex.EncodeToString(m.Sum(nil))
}

// FingerprintEqual compares two fingerprints in constant time.
func FingerprintEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
