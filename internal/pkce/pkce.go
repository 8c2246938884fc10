// Package pkce generates the per-attempt parameters for the OAuth 2.0
// authorization code flow with PKCE (RFC 7636): a high-entropy code verifier,
// its S256 challenge, and the CSRF token echoed through the state parameter.
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/calfront/calfront/internal/crypto"
)

const (
	verifierBytes = 32
	csrfBytes     = 16
)

// Method is the challenge derivation sent to the provider. Plain is not
// supported.
const Method = "S256"

// Params is one authorization attempt's verifier/challenge pair. It is never
// persisted; the verifier travels only inside the encoded state value for the
// duration of a single redirect round-trip.
type Params struct {
	Verifier  string
	Challenge string
}

// Generate creates fresh PKCE parameters from the secure randomness source.
func Generate() (Params, error) {
	verifier, err := crypto.RandomToken(verifierBytes)
	if err != nil {
		return Params{}, err
	}
	return Params{Verifier: verifier, Challenge: Challenge(verifier)}, nil
}

// Challenge derives the S256 code challenge: the SHA-256 digest of the
// verifier's UTF-8 bytes, base64 URL-encoded without padding. Deterministic
// for a given verifier.
func Challenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// VerifyChallenge reports whether challenge is the S256 derivation of
// verifier, in constant time.
func VerifyChallenge(verifier, challenge string) bool {
	computed := Challenge(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

// NewCSRFToken creates the per-attempt CSRF token held in the attempt marker
// and echoed inside the state payload.
func NewCSRFToken() (string, error) {
	return crypto.RandomToken(csrfBytes)
}
