package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrRandomnessUnavailable signals that the platform's secure randomness
// source failed. Callers must abort the operation rather than fall back to
// non-cryptographic randomness.
var ErrRandomnessUnavailable = errors.New("secure randomness source unavailable")

// RandomToken draws n cryptographically secure random bytes and returns them
// base64 URL-encoded without padding. Suitable for PKCE verifiers, CSRF
// tokens, and other opaque single-use values.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomnessUnavailable, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
