package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// outboundTimeout bounds every call to the provider. Token exchange and
// identity resolution must never wait indefinitely.
const outboundTimeout = 10 * time.Second

// ErrUnknownProvider indicates an unsupported provider name in the config.
var ErrUnknownProvider = fmt.Errorf("unknown OAuth provider")

// base carries the oauth2 client configuration shared by all providers.
type base struct {
	oauth2Config *oauth2.Config
	client       *http.Client
}

func newBase(cfg *oauth2.Config) base {
	return base{
		oauth2Config: cfg,
		client:       &http.Client{Timeout: outboundTimeout},
	}
}

func (b base) AuthCodeURL(state, codeChallenge string) string {
	return b.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (b base) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	// The bounded client also applies to the exchange POST.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.client)
	return b.oauth2Config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
}

// get performs an authenticated GET against a provider endpoint and returns
// the response body on a 200.
func (b base) get(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func decodeJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
