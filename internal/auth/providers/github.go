package providers

import (
	"context"
	"fmt"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"github.com/brizzai/auth-gateway/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserInfoURL = "https://api.github.com/user"

type GitHubProvider struct {
	base
}

func NewGitHubProvider(cfg *config.OAuthConfig) *GitHubProvider {
	return &GitHubProvider{
		base: newBase(&oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   github.Endpoint.AuthURL,
				TokenURL:  github.Endpoint.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		}),
	}
}

func (p *GitHubProvider) FetchUserInfo(ctx context.Context, accessToken string) (*models.UserInfo, error) {
	body, err := p.get(ctx, githubUserInfoURL, accessToken)
	if err != nil {
		return nil, err
	}

	var gh struct {
		ID    int    `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(body, &gh); err != nil {
		return nil, err
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}

	return &models.UserInfo{
		ID:    fmt.Sprintf("%d", gh.ID),
		Email: gh.Email,
		Name:  name,
	}, nil
}
