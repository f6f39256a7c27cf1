package providers

import (
	"context"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"golang.org/x/oauth2"
)

// Provider is the outbound contract with the identity provider: building the
// authorization redirect, exchanging a code for tokens, and resolving the
// stable external identifier behind an access token.
type Provider interface {
	// AuthCodeURL returns the provider authorization URL carrying the state
	// token and the S256 code challenge
	AuthCodeURL(state, codeChallenge string) string

	// Exchange trades an authorization code plus its PKCE verifier for a
	// token pair
	Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)

	// FetchUserInfo resolves the provider identity behind an access token
	FetchUserInfo(ctx context.Context, accessToken string) (*models.UserInfo, error)
}
