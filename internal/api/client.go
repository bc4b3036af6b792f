// Package api is the HTTP gateway to the Sporty backend: a thin client that
// resolves the session before every call, plus typed wrappers for each route
// group.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DotmanL/sporty-go/internal/log"
	"github.com/google/uuid"
)

// TokenSource resolves the access token to attach to an outgoing request.
// The session coordinator implements it; ("", false) means no session.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// RequestError is the failure result of a gateway call. It is a value the
// caller inspects, never a panic: transport faults carry Err, rejected
// requests carry Status and the raw response body.
type RequestError struct {
	Status int
	Body   json.RawMessage
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("request rejected: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("request rejected: status %d", e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client dispatches JSON requests to the backend. Every call consults the
// token source first and attaches the resulting bearer token, so callers
// never manage credentials themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithTransport overrides the underlying HTTP client.
func WithTransport(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a gateway client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request. body is marshaled as JSON when non-nil; a 2xx/3xx
// response is decoded into out when out is non-nil and the body is non-empty.
// An empty success body leaves out untouched, so callers must check what they
// received.
func (c *Client) do(ctx context.Context, method, path string, body, out any) *RequestError {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Err: fmt.Errorf("marshaling request body: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &RequestError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if token, ok := c.tokens.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp == nil || resp.StatusCode >= 400 {
			reqErr := &RequestError{Err: err}
			if resp != nil {
				reqErr.Status = resp.StatusCode
				resp.Body.Close()
			}
			return reqErr
		}
		// A response surfacing through the error channel with a success
		// status is malformed transport behavior; its body is already gone,
		// so treat it as a bodiless success but leave a trace.
		log.LogWarnWithFields("api", "Success-status response arrived on the error channel", map[string]any{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  err.Error(),
		})
		resp.Body.Close()
		return nil
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return &RequestError{Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", readErr)}
	}

	if resp.StatusCode >= 400 {
		return &RequestError{Status: resp.StatusCode, Body: raw}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &RequestError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response body: %w", err)}
		}
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) *RequestError {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any) *RequestError {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) *RequestError {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) *RequestError {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}
