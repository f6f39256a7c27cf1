package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brizzai/auth-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(providerURL string) *config.OAuthConfig {
	return &config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      providerURL + "/authorize",
		TokenURL:     providerURL + "/token",
		UserInfoURL:  providerURL + "/me",
		RedirectURL:  "http://gateway.example.com/auth/callback",
		Scopes:       []string{"identity.read", "email"},
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := NewOAuth2Provider(testConfig("https://provider.example.com"))

	raw := p.AuthCodeURL("state-1", "challenge-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://gateway.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "identity.read email", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "challenge-1", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"AT1","refresh_token":"RT1","expires_in":3600,"token_type":"Bearer"}`)
	}))
	defer ts.Close()

	p := NewOAuth2Provider(testConfig(ts.URL))

	token, err := p.Exchange(context.Background(), "abc", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "AT1", token.AccessToken)
	assert.Equal(t, "RT1", token.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, 10*time.Second)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "abc", gotForm.Get("code"))
	assert.Equal(t, "verifier-1", gotForm.Get("code_verifier"))
	assert.Equal(t, "http://gateway.example.com/auth/callback", gotForm.Get("redirect_uri"))

	// Client authentication travels as HTTP Basic, never in the form body.
	require.True(t, strings.HasPrefix(gotAuth, "Basic "))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(gotAuth, "Basic "))
	require.NoError(t, err)
	assert.Equal(t, "client-id:client-secret", string(decoded))
	assert.Empty(t, gotForm.Get("client_secret"))
}

func TestExchangeProviderRejects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer ts.Close()

	p := NewOAuth2Provider(testConfig(ts.URL))

	_, err := p.Exchange(context.Background(), "stale-code", "verifier-1")
	require.Error(t, err)
}

func TestFetchUserInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		require.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"prov-42","email":"u@example.com","name":"U"}`)
	}))
	defer ts.Close()

	p := NewOAuth2Provider(testConfig(ts.URL))

	info, err := p.FetchUserInfo(context.Background(), "AT1")
	require.NoError(t, err)
	assert.Equal(t, "prov-42", info.ID)
	assert.Equal(t, "u@example.com", info.Email)
	assert.Equal(t, "U", info.Name)
}

func TestFetchUserInfoSubFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sub":"prov-42"}`)
	}))
	defer ts.Close()

	p := NewOAuth2Provider(testConfig(ts.URL))

	info, err := p.FetchUserInfo(context.Background(), "AT1")
	require.NoError(t, err)
	assert.Equal(t, "prov-42", info.ID)
}

func TestFetchUserInfoFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := NewOAuth2Provider(testConfig(ts.URL))

	_, err := p.FetchUserInfo(context.Background(), "AT1")
	require.Error(t, err)
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := &config.Config{OAuth: config.OAuthConfig{Provider: "myspace"}}
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewNamedProviders(t *testing.T) {
	for name, want := range map[string]interface{}{
		"spotify": &SpotifyProvider{},
		"github":  &GitHubProvider{},
		"custom":  &OAuth2Provider{},
	} {
		cfg := &config.Config{OAuth: config.OAuthConfig{Provider: name, ClientID: "cid", ClientSecret: "cs"}}
		p, err := New(cfg)
		require.NoError(t, err, name)
		assert.IsType(t, want, p, name)
	}
}
