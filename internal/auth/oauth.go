// Package auth wires the authorization flow: secret generation, session
// carry, the provider round-trip and identity persistence, exposed as two
// HTTP endpoints.
package auth

import (
	"net/http"

	"github.com/brizzai/auth-gateway/internal/auth/handlers"
	"github.com/brizzai/auth-gateway/internal/auth/middleware"
	"github.com/brizzai/auth-gateway/internal/auth/providers"
	"github.com/brizzai/auth-gateway/internal/config"
	"github.com/brizzai/auth-gateway/internal/secrets"
	"github.com/brizzai/auth-gateway/internal/session"
	"github.com/brizzai/auth-gateway/internal/store"
)

// Service represents the authorization flow service
type Service struct {
	config   *config.Config
	provider providers.Provider
	sessions *session.Store
	handler  *handlers.Handler
}

// NewService creates a new authorization flow service
func NewService(cfg *config.Config, provider providers.Provider, users *store.UserStore) *Service {
	sessions := session.NewStore(cfg.IsProduction())
	handler := handlers.NewHandler(&cfg.OAuth, provider, sessions, users, secrets.RandomToken, secrets.DeriveChallenge)

	return &Service{
		config:   cfg,
		provider: provider,
		sessions: sessions,
		handler:  handler,
	}
}

// RegisterRoutes registers the flow endpoints
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", s.handler.HandleLogin)
	mux.HandleFunc("/auth/callback", s.handler.HandleCallback)
}

// WrapWithMiddleware wraps the handler with the CORS middleware
func (s *Service) WrapWithMiddleware(handler http.Handler) http.Handler {
	return middleware.CORSWithOrigins(s.config.OAuth.AllowOrigins)(handler)
}

// Close releases the session-carry store resources
func (s *Service) Close() {
	s.sessions.Close()
}

// GetProvider returns the configured provider
func (s *Service) GetProvider() providers.Provider {
	return s.provider
}
