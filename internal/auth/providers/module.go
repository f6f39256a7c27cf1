package providers

import (
	"fmt"

	"github.com/brizzai/auth-gateway/internal/config"
	"go.uber.org/fx"
)

// New builds the provider named in the config.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.OAuth.Provider {
	case "spotify":
		return NewSpotifyProvider(&cfg.OAuth), nil
	case "github":
		return NewGitHubProvider(&cfg.OAuth), nil
	case "", "custom":
		return NewOAuth2Provider(&cfg.OAuth), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.OAuth.Provider)
	}
}

// Module provides the OAuth provider dependencies
var Module = fx.Module("providers",
	fx.Provide(
		New,
	),
)
