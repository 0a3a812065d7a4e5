package graph

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

const defaultScope = "https://graph.microsoft.com/.default"

// TokenSource supplies bearer tokens for calendar backend calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed token. Used in tests and managed-identity
// sidecar setups where the token is provisioned externally.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// ClientCredentialConfig holds app-only (client credential) auth parameters.
type ClientCredentialConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Scope defaults to the Graph ".default" scope.
	Scope string
	// AuthorityBaseURL overrides the identity endpoint, for tests.
	AuthorityBaseURL string
}

// ClientCredentialTokenSource acquires app-only tokens and caches them until
// shortly before expiry.
type ClientCredentialTokenSource struct {
	cfg        ClientCredentialConfig
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewClientCredentialTokenSource creates a caching client-credential token
// source.
func NewClientCredentialTokenSource(cfg ClientCredentialConfig) *ClientCredentialTokenSource {
	if cfg.Scope == "" {
		cfg.Scope = defaultScope
	}
	if cfg.AuthorityBaseURL == "" {
		cfg.AuthorityBaseURL = "https://login.microsoftonline.com"
	}
	return &ClientCredentialTokenSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a cached token or fetches a fresh one.
func (ts *ClientCredentialTokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expires) {
		return ts.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", ts.cfg.ClientID)
	form.Set("client_secret", ts.cfg.ClientSecret)
	form.Set("scope", ts.cfg.Scope)

	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(ts.cfg.AuthorityBaseURL, "/"), url.PathEscape(ts.cfg.TenantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newError(KindAuthenticationFailed, fmt.Sprintf("token endpoint returned %d", resp.StatusCode))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", newError(KindAuthenticationFailed, "token response did not contain a token")
	}

	ts.token = tokenResp.AccessToken
	// Refresh a minute early so in-flight calls never carry a dead token.
	ts.expires = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return ts.token, nil
}
