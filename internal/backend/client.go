// Package backend is the portal's HTTP client for the external MedVerse API.
// It centralizes the two outbound concerns every caller needs: attaching the
// visitor's bearer token, and tearing the session down when the backend
// rejects it with a 401.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnreachable marks transport-level failures (connection refused, DNS).
// Callers surface these as "backend down", never as a generic server error.
var ErrUnreachable = errors.New("backend unreachable")

// ErrUnauthorized marks a 401 from the backend. By the time a caller sees
// it, the session has already been cleared and flagged expired.
var ErrUnauthorized = errors.New("backend rejected credentials")

// StatusError carries a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// TokenSource yields the bearer token for a visitor scope, if any. The
// gateway backs this with the session store's priority chain; the CLI backs
// it with the OS keyring.
type TokenSource interface {
	Token(ctx context.Context, scope string) (string, bool)
}

// SessionEvictor is notified when the backend invalidates a session. The
// gateway clears both stores and raises the expired flag here.
type SessionEvictor interface {
	Evict(ctx context.Context, scope string)
}

// redirectDelay lets in-flight work settle before the scheduled navigation
// fires. Harmless if the visitor already moved on: the target is login.
const redirectDelay = 200 * time.Millisecond

// Client talks to the MedVerse backend. All endpoint paths are relative to
// {baseURL}/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	evictor    SessionEvictor
	navigate   func(scope, path string) // optional, fired after redirectDelay on 401
	loginPath  string
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithSessionEvictor sets the hook invoked when a 401 arrives.
func WithSessionEvictor(evictor SessionEvictor) Option {
	return func(c *Client) { c.evictor = evictor }
}

// WithNavigate sets the deferred navigation hook fired after a 401. path is
// always the login path.
func WithNavigate(navigate func(scope, path string)) Option {
	return func(c *Client) { c.navigate = navigate }
}

// WithLoginPath overrides the path handed to the navigate hook.
func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

// New creates a backend client for the given base URL.
func New(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		loginPath: "/login",
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one authenticated backend call: marshal body, attach token,
// send, decode. A 401 tears the session down.
func (c *Client) do(ctx context.Context, scope, method, path string, body, out any) error {
	return c.call(ctx, scope, method, path, body, out, false)
}

// doAnon performs an unauthenticated call. Auth endpoints go through here:
// a 401 from login means bad credentials, not an expired session, and must
// not evict whatever session the visitor already holds.
func (c *Client) doAnon(ctx context.Context, scope, method, path string, body, out any) error {
	return c.call(ctx, scope, method, path, body, out, true)
}

func (c *Client) call(ctx context.Context, scope, method, path string, body, out any, anon bool) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !anon && c.tokens != nil {
		if token, ok := c.tokens.Token(ctx, scope); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !anon {
		c.handleUnauthorized(ctx, scope)
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// handleUnauthorized tears the session down immediately and schedules the
// forced return to login. The delay is fixed and never cancelled.
func (c *Client) handleUnauthorized(ctx context.Context, scope string) {
	c.log.Warn().Str("scope", scope).Msg("Backend returned 401, clearing session")
	if c.evictor != nil {
		c.evictor.Evict(ctx, scope)
	}
	if c.navigate != nil {
		time.AfterFunc(redirectDelay, func() {
			c.navigate(scope, c.loginPath)
		})
	}
}

// raw performs a call and returns the response body bytes, for relaying
// non-JSON payloads such as CSV exports.
func (c *Client) raw(ctx context.Context, scope, method, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx, scope); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, scope)
		return nil, "", fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// errorMessage extracts the backend's error text. The backend is not
// consistent about its field name.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
