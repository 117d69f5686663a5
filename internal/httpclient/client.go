// Package httpclient is the JSON-over-HTTP client shared by the provider
// APIs. It retries transient failures with exponential backoff.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

const (
	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Observer records the outcome of each HTTP attempt.
type Observer interface {
	ObserveRequest(service string, status int, elapsed time.Duration)
}

// Client performs GET requests against one API.
type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	params     url.Values
	log        *zap.Logger
	observer   Observer
	retryWait  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// WithObserver sets the request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithDefaultParam adds a query parameter sent with every request.
func WithDefaultParam(key, value string) Option {
	return func(c *Client) { c.params.Set(key, value) }
}

// WithRetryWait overrides the base backoff interval.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// New creates a client for the API rooted at baseURL.
func New(service, baseURL string, opts ...Option) *Client {
	c := &Client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		params:     url.Values{},
		log:        zap.NewNop(),
		retryWait:  baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON body into result.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, result any) error {
	q := url.Values{}
	for k, vs := range c.params {
		q[k] = append([]string(nil), vs...)
	}
	for k, v := range params {
		q.Set(k, v)
	}
	fullURL := c.baseURL + path
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}

	log := c.log.With(zap.String("service", c.service), zap.String("path", path))
	log.Debug("request")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			log.Debug("retrying", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.observe(0, start)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", herrors.ErrNetworkError, err)
			log.Debug("network error", zap.Error(err))
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.observe(resp.StatusCode, start)
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		log.Debug("response", zap.Int("status", resp.StatusCode))

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = newAPIError(c.service, resp.StatusCode, respBody)
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			apiErr := newAPIError(c.service, resp.StatusCode, respBody)
			if resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("%w: %w", herrors.ErrRateLimited, apiErr)
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse %s response: %w", c.service, err)
			}
		}

		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) observe(status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(c.service, status, time.Since(start))
	}
}

// APIError is a non-2xx response from a provider.
type APIError struct {
	Service string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.Status, e.Message)
}

// Is matches ErrSearchProvider.
func (e *APIError) Is(target error) bool {
	return target == herrors.ErrSearchProvider
}

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newAPIError(service string, status int, body []byte) *APIError {
	// Providers disagree on the error envelope; a top-level message wins.
	var envelope struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch e := envelope.Error.(type) {
		case string:
			if e != "" {
				msg = e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				msg = m
			}
		}
		if envelope.Message != "" {
			msg = envelope.Message
		}
	}
	return &APIError{Service: service, Status: status, Message: msg}
}
