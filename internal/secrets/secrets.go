// Package secrets produces the random material the authorization flow
// depends on: state tokens and PKCE verifier/challenge pairs (RFC 7636).
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// TokenLength is the number of random bytes behind a state token or code
// verifier. 32 bytes gives 256 bits of entropy, enough that collisions and
// guessing are not a practical concern.
const TokenLength = 32

// RandomToken returns a URL-safe token with byteLength bytes of entropy from
// the OS random source. It fails only if that source is unavailable, which
// callers must treat as fatal.
func RandomToken(byteLength int) (string, error) {
	b := make([]byte, byteLength)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveChallenge computes the S256 code challenge for a PKCE verifier:
// the SHA-256 digest of the verifier, base64url-encoded without padding.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
