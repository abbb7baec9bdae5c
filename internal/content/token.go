package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenCache holds the OAuth client-credentials token for the content
// backend. It is constructed once per process and injected wherever the CMS
// is called, so there is no hidden process-global token state. A refresh is
// triggered when the cached token is within 60 seconds of expiry. With no
// credentials configured it stays silent and requests go out anonymous.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpc        *http.Client
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// expirySkew is how long before true expiry a token is considered stale.
const expirySkew = 60 * time.Second

func NewTokenCache(baseURL, clientID, clientSecret string) *TokenCache {
	return &TokenCache{
		tokenURL:     strings.TrimRight(baseURL, "/") + "/oauth/token",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

// Token returns a bearer token, refreshing if the cached one is missing or
// about to expire. An empty token with nil error means credentials are not
// configured and the caller should send the request unauthenticated.
func (t *TokenCache) Token(ctx context.Context) (string, error) {
	if t.clientID == "" || t.clientSecret == "" {
		return "", nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiresAt) {
		return t.token, nil
	}
	return t.refreshLocked(ctx)
}

func (t *TokenCache) refreshLocked(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {t.clientID},
		"client_secret": {t.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	t.token = payload.AccessToken
	t.expiresAt = t.now().Add(time.Duration(payload.ExpiresIn)*time.Second - expirySkew)
	return t.token, nil
}
