package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := RandomToken(TokenLength)
		require.NoError(t, err)
		require.False(t, seen[token], "token collision after %d draws", i)
		seen[token] = true
	}
}

func TestRandomTokenURLSafe(t *testing.T) {
	token, err := RandomToken(TokenLength)
	require.NoError(t, err)

	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
	// 32 bytes encode to 43 base64url characters without padding
	assert.Len(t, token, 43)
}

func TestDeriveChallengeDeterministic(t *testing.T) {
	verifier, err := RandomToken(TokenLength)
	require.NoError(t, err)

	first := DeriveChallenge(verifier)
	second := DeriveChallenge(verifier)

	assert.Equal(t, first, second)
	assert.NotEqual(t, verifier, first, "challenge must not equal the verifier")
}

func TestDeriveChallengeKnownVector(t *testing.T) {
	// RFC 7636 appendix B
	challenge := DeriveChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
}

func TestDeriveChallengeURLSafe(t *testing.T) {
	for i := 0; i < 100; i++ {
		verifier, err := RandomToken(TokenLength)
		require.NoError(t, err)
		challenge := DeriveChallenge(verifier)
		assert.False(t, strings.ContainsAny(challenge, "+/="), "challenge %q is not URL-safe", challenge)
	}
}
