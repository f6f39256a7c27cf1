package providers

import (
	"context"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"github.com/brizzai/auth-gateway/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"
)

const spotifyUserInfoURL = "https://api.spotify.com/v1/me"

// defaultSpotifyScopes is used when the config does not pin a scope list.
var defaultSpotifyScopes = []string{"user-read-private", "user-read-email"}

type SpotifyProvider struct {
	base
}

func NewSpotifyProvider(cfg *config.OAuthConfig) *SpotifyProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultSpotifyScopes
	}

	return &SpotifyProvider{
		base: newBase(&oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotify.Endpoint.AuthURL,
				TokenURL:  spotify.Endpoint.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      scopes,
		}),
	}
}

func (p *SpotifyProvider) FetchUserInfo(ctx context.Context, accessToken string) (*models.UserInfo, error) {
	body, err := p.get(ctx, spotifyUserInfoURL, accessToken)
	if err != nil {
		return nil, err
	}

	var sp struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(body, &sp); err != nil {
		return nil, err
	}

	return &models.UserInfo{
		ID:    sp.ID,
		Email: sp.Email,
		Name:  sp.DisplayName,
	}, nil
}
