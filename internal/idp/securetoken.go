// Package idp wraps the external identity provider: the Firebase secure-token
// endpoint used for refresh, and Google OAuth used for sign-in.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DotmanL/sporty-go/internal/log"
)

// DefaultSecureTokenEndpoint is the Firebase token refresh endpoint.
const DefaultSecureTokenEndpoint = "https://securetoken.googleapis.com/v1/token"

// TokenRefresher exchanges a refresh token for a fresh credential pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// RefreshResult is the secure-token response body. The endpoint returns
// expires_in as a decimal string.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// ExpiresInSeconds parses the lifetime field. An absent or unparseable value
// counts as zero, which downstream treats as immediately expired.
func (r *RefreshResult) ExpiresInSeconds() int {
	n, err := strconv.Atoi(r.ExpiresIn)
	if err != nil {
		return 0
	}
	return n
}

// refreshRequest is the secure-token request body.
type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// SecureTokenClient calls the Firebase secure-token endpoint. All failures
// come back as errors, never panics; the caller maps any error to a failed
// refresh.
type SecureTokenClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// SecureTokenOption configures the client.
type SecureTokenOption func(*SecureTokenClient)

// WithEndpoint overrides the token endpoint (for tests).
func WithEndpoint(endpoint string) SecureTokenOption {
	return func(c *SecureTokenClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) SecureTokenOption {
	return func(c *SecureTokenClient) {
		c.httpClient = client
	}
}

// NewSecureTokenClient creates a refresh client for the given Firebase API key.
func NewSecureTokenClient(apiKey string, opts ...SecureTokenOption) *SecureTokenClient {
	c := &SecureTokenClient{
		apiKey:     apiKey,
		endpoint:   DefaultSecureTokenEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh exchanges refreshToken for a new credential pair.
func (c *SecureTokenClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	body, err := json.Marshal(refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling refresh request: %w", err)
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.LogWarnWithFields("idp", "Token refresh rejected", map[string]any{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("refresh rejected: status %d", resp.StatusCode)
	}

	var result RefreshResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, fmt.Errorf("refresh response missing tokens")
	}

	return &result, nil
}
