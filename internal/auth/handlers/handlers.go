// Package handlers implements the two HTTP endpoints of the authorization
// flow: login initiation and the provider callback.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"github.com/brizzai/auth-gateway/internal/auth/providers"
	"github.com/brizzai/auth-gateway/internal/config"
	"github.com/brizzai/auth-gateway/internal/logger"
	"github.com/brizzai/auth-gateway/internal/session"
	"github.com/brizzai/auth-gateway/internal/store"
	"github.com/brizzai/auth-gateway/internal/utils"
	"go.uber.org/zap"
)

// Session-carry keys for the pending authorization.
const (
	keyState    = "oauth_state"
	keyVerifier = "code_verifier"
)

// stateTokenBytes and verifierBytes size the random material behind a login
// attempt.
const (
	stateTokenBytes = 32
	verifierBytes   = 32
)

// UserStore is the persistence contract the callback drives after a
// successful exchange.
type UserStore interface {
	Upsert(ctx context.Context, providerID string, info models.UserInfo, grant models.TokenGrant) (*store.User, error)
}

// SecretSource produces the random tokens for a login attempt. It is a
// function so tests can pin the generated values.
type SecretSource func(byteLength int) (string, error)

// Handler handles the authorization flow HTTP requests
type Handler struct {
	oauth       *config.OAuthConfig
	provider    providers.Provider
	sessions    *session.Store
	users       UserStore
	randomToken SecretSource
	derive      func(verifier string) string
}

// NewHandler creates a new Handler instance
func NewHandler(oauth *config.OAuthConfig, provider providers.Provider, sessions *session.Store, users UserStore, random SecretSource, derive func(string) string) *Handler {
	return &Handler{
		oauth:       oauth,
		provider:    provider,
		sessions:    sessions,
		users:       users,
		randomToken: random,
		derive:      derive,
	}
}

// HandleLogin begins a login attempt: it seeds the session-carry store with
// a fresh state token and PKCE verifier and redirects the browser to the
// provider's authorization endpoint.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.randomToken(stateTokenBytes)
	if err != nil {
		// The random source failing means nothing generated from here on can
		// be trusted.
		logger.Fatal("Random source unavailable", zap.Error(err))
		return
	}
	verifier, err := h.randomToken(verifierBytes)
	if err != nil {
		logger.Fatal("Random source unavailable", zap.Error(err))
		return
	}
	challenge := h.derive(verifier)

	if err := h.sessions.Put(w, r, keyState, state, config.PendingAuthTTL); err != nil {
		logger.Fatal("Random source unavailable", zap.Error(err))
		return
	}
	if err := h.sessions.Put(w, r, keyVerifier, verifier, config.PendingAuthTTL); err != nil {
		logger.Fatal("Random source unavailable", zap.Error(err))
		return
	}

	logger.Info("Redirecting to provider authorization endpoint")
	http.Redirect(w, r, h.provider.AuthCodeURL(state, challenge), http.StatusFound)
}

// HandleCallback drives the callback state machine: validate the returning
// request, exchange the code, resolve the identity, persist it, redirect.
// Every validation happens before any outbound call, so forged or replayed
// callbacks never trigger a token exchange.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, grant, ferr := h.runCallback(r)
	if ferr != nil {
		h.writeFlowError(w, ferr)
		return
	}

	h.sessions.Clear(w, r, keyState, keyVerifier)

	redirect := fmt.Sprintf("%s/dashboard?token=%s&userId=%s",
		strings.TrimRight(h.oauth.ConsumerURL, "/"),
		url.QueryEscape(grant.AccessToken),
		url.QueryEscape(user.ID),
	)
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *Handler) runCallback(r *http.Request) (*store.User, *models.TokenGrant, *FlowError) {
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		return nil, nil, errProviderDenied(q.Get("error_description"))
	}

	// Consume the stored state before comparing so a mismatched callback
	// still burns the pending authorization.
	storedState, ok := h.sessions.TakeOnce(r, keyState)
	state := q.Get("state")
	if !ok || state == "" || state != storedState {
		return nil, nil, errStateMismatch()
	}

	verifier, ok := h.sessions.TakeOnce(r, keyVerifier)
	if !ok {
		return nil, nil, errMissingVerifier()
	}

	codes := q["code"]
	if len(codes) != 1 || codes[0] == "" {
		return nil, nil, errMalformedCallback()
	}
	code := codes[0]

	// Detached from the client connection: once the exchange has started it
	// runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())

	token, err := h.provider.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, nil, errTokenExchange(err)
	}

	info, err := h.provider.FetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, errIdentityResolution(err)
	}

	grant := models.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	user, err := h.users.Upsert(ctx, info.ID, *info, grant)
	if err != nil {
		return nil, nil, errPersistence(err)
	}

	logger.Info("Login completed",
		zap.String("provider_id", info.ID),
		zap.String("user_id", user.ID),
		zap.Time("token_expires_at", grant.ExpiresAt),
	)
	return user, &grant, nil
}

// writeFlowError logs the failure and converts it to the client response.
// Token and credential material never reaches the log fields here; only the
// wrapped transport or storage error does.
func (h *Handler) writeFlowError(w http.ResponseWriter, ferr *FlowError) {
	fields := []zap.Field{zap.String("kind", string(ferr.Kind))}
	if ferr.Err != nil {
		fields = append(fields, zap.Error(ferr.Err))
	}

	switch ferr.Kind {
	case KindStateMismatch:
		logger.Warn("Callback rejected: security event", fields...)
	case KindProviderDenied, KindMissingVerifier, KindMalformedCallback:
		logger.Warn("Callback rejected", fields...)
	default:
		logger.Error("Callback failed", fields...)
	}

	utils.WriteError(w, ferr.Message, ferr.Status)
}
