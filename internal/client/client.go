// Package client is the single channel through which the Tanami backend is
// called. It owns the bearer token: an in-memory copy mirrored to a
// persistent storage.Store, attached to every request while present.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tanami-dev/tanami/internal/storage"
)

const (
	// DefaultBaseURL is the backend address used when none is configured
	DefaultBaseURL = "http://localhost:5328"

	// DefaultTimeout bounds every request unless overridden with WithTimeout
	DefaultTimeout = 30 * time.Second

	bearerPrefix = "Bearer "
)

// Client represents an HTTP client for the Tanami API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	store      storage.Store
	logger     zerolog.Logger
	validate   *validator.Validate

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request time budget. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client. The token is persisted in store.
func New(baseURL string, store storage.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		store:      store,
		logger:     zerolog.Nop(),
		validate:   newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the backend address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken stores the token in memory and in persistent storage. Every
// subsequent request carries it.
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(storage.TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	c.token = token
	return nil
}

// Token returns the in-memory token, lazily loading it from persistent
// storage on first use. It returns "" when no token was ever set.
func (c *Client) Token() (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	stored, ok, err := c.store.Get(storage.TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if ok {
		c.token = stored
	}
	return c.token, nil
}

// ClearToken removes the token from memory and persistent storage.
func (c *Client) ClearToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	if err := c.store.Delete(storage.TokenKey); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// RequestOption adjusts a single outbound request
type RequestOption func(*http.Request)

// WithHeader sets a header on the request, overriding the defaults
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Do sends a JSON request to endpoint and decodes a successful response into
// out. A nil body sends no payload; a nil out discards the response. Non-2xx
// responses fail with *APIError.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...RequestOption) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	return c.send(ctx, method, endpoint, reader, "application/json", out, opts...)
}

// Get issues a GET to endpoint, which may carry a query string
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any, opts ...RequestOption) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	token, err := c.Token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	for _, opt := range opts {
		opt(req)
	}

	return c.execute(req, out)
}

// execute runs req and decodes a 2xx JSON response into out
func (c *Client) execute(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
