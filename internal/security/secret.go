package security

import (
	"errors"
	"os"
	"strings"
)

// ErrMissingSecret is returned when no token secret is configured.
var ErrMissingSecret = errors.New("token secret is empty")

const secretFilePrefix = "file:"

// LoadSecret returns the token signing secret. s is either the secret itself or "file:<path>",
// in which case the file content (trimmed) is used. The result must be at least
// MinSecretLength bytes.
func LoadSecret(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrMissingSecret
	}
	if strings.HasPrefix(s, secretFilePrefix) {
		b, err := os.ReadFile(strings.TrimPrefix(s, secretFilePrefix))
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(string(b))
	}
	if len(s) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return []byte(s), nil
}
