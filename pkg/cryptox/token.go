package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy.
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (recommended for SSO tokens).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random opaque token of the
// given byte length, encoded as base64url without padding. The result is safe
// to carry in a URL query parameter.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error.
// Use only where failure is unrecoverable (tests, init).
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// NormalizeToken strips all '-' characters from a token. Intermediate systems
// are known to reformat hyphenated tokens in transit, so token equality is
// hyphen-insensitive: compare NormalizeToken(a) against NormalizeToken(b).
// No other normalization is applied; tokens that differ beyond hyphens are
// never treated as equal.
func NormalizeToken(token string) string {
	return strings.ReplaceAll(token, "-", "")
}
