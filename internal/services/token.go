package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// tokenExpiryBuffer is subtracted from the upstream expires_in so a token
	// is refreshed before it can expire mid-request.
	tokenExpiryBuffer = 5 * time.Minute
)

var _ oauth2.TokenSource = (*tokenSource)(nil)

// tokenSource acquires and caches client-credentials tokens in a single
// process-wide slot.
//
// The slot is guarded by a mutex, and the exchange itself runs under a
// [singleflight.Group]: concurrent callers that both observe an expired slot
// share one upstream exchange instead of issuing duplicates.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time

	mu     sync.Mutex
	cached *oauth2.Token
	group  singleflight.Group
}

// newTokenSource creates a token source, failing fast when either credential
// is absent.
func newTokenSource(clientID, clientSecret string, httpClient *http.Client, now func() time.Time) (*tokenSource, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id", shared.ErrMissingCredentials)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client secret", shared.ErrMissingCredentials)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}

	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		httpClient:   httpClient,
		now:          now,
	}, nil
}

// Token implements [oauth2.TokenSource].
func (t *tokenSource) Token() (*oauth2.Token, error) {
	return t.token(context.Background())
}

// token returns the cached token when it is still inside its buffered expiry
// window, otherwise performs a client-credentials exchange.
func (t *tokenSource) token(ctx context.Context) (*oauth2.Token, error) {
	t.mu.Lock()
	if tok := t.cached; tok != nil && t.now().Before(tok.Expiry) {
		t.mu.Unlock()
		return tok, nil
	}
	t.mu.Unlock()

	v, err, _ := t.group.Do("token", func() (any, error) {
		return t.exchange(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*oauth2.Token), nil
}

// Invalidate clears the cached token so the next call performs a fresh exchange.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.cached = nil
	t.mu.Unlock()
}

// exchange performs the client-credentials token exchange and stores the
// result. The slot is cleared on any failure so the next call retries cleanly.
func (t *tokenSource) exchange(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		t.Invalidate()
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.SetBasicAuth(t.clientID, t.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.Invalidate()
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Invalidate()
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Invalidate()

		var failure struct {
			Code        string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(body, &failure) == nil && failure.Code != "" {
			return nil, fmt.Errorf("%w: %s (%s)", shared.ErrAuthFailed, failure.Description, failure.Code)
		}
		return nil, fmt.Errorf("%w: token endpoint returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		t.Invalidate()
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		t.Invalidate()
		return nil, fmt.Errorf("%w: token endpoint returned no access token", shared.ErrAuthFailed)
	}

	token := &oauth2.Token{
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		Expiry:      t.now().Add(time.Duration(grant.ExpiresIn)*time.Second - tokenExpiryBuffer),
	}

	t.mu.Lock()
	t.cached = token
	t.mu.Unlock()

	return token, nil
}
