package meetbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout caps each call when Config.Timeout is zero
	DefaultTimeout = 10 * time.Second
	// APIVersionPath is appended to every configured base URL
	APIVersionPath = "/api/v1"
	// DefaultUserAgent is sent unless overridden with WithUserAgent
	DefaultUserAgent = "meetbot-go"

	maxResponseBytes = 1 << 20
)

// Config holds the connection settings for a Client
type Config struct {
	// BaseURL is the service origin, e.g. https://bots.example.com
	BaseURL string
	// Timeout is the hard cap per call; zero means DefaultTimeout
	Timeout time.Duration
}

// Client represents a meeting bot API client. It is safe for concurrent use.
type Client struct {
	mu      sync.RWMutex
	baseURL string

	timeout    time.Duration
	httpClient *http.Client
	userAgent  string
	headers    http.Header
	metrics    *Metrics
	logger     zerolog.Logger
}

var _ API = (*Client)(nil)

// NewClient creates a new meeting bot client. No request is made.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	const op = "initialize client"
	if err := validateBaseURL(op, cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Timeout < 0 {
		return nil, validationError(op, "timeout", "timeout must be a positive duration")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		timeout:    timeout,
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		headers:    make(http.Header),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}
	client.httpClient.Timeout = timeout

	return client, nil
}

// normalizeBaseURL strips one trailing slash and appends the API version path
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimSuffix(baseURL, "/")
	return baseURL + APIVersionPath
}

// SetBaseURL points the client at a different service. Calls that already
// built their request keep the previous URL.
func (c *Client) SetBaseURL(baseURL string) error {
	if err := validateBaseURL("set base URL", baseURL); err != nil {
		return err
	}

	normalized := normalizeBaseURL(baseURL)

	c.mu.Lock()
	c.baseURL = normalized
	c.mu.Unlock()

	c.logger.Debug().Str("base_url", normalized).Msg("Meeting bot base URL changed")
	return nil
}

// BaseURL returns the effective base URL including the API version path
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// request describes a single API call
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	apiKey string
}

// do performs an HTTP request and decodes a 2xx body into out.
// Errors from here are either *Error or raw causes for normalizeError.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	requestURL := c.BaseURL() + r.path
	if len(r.query) > 0 {
		requestURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, requestURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(r.op, "error", elapsed)
		c.logger.Debug().
			Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Str("request_id", requestID).
			Dur("duration", elapsed).
			Msg("Meeting bot API request failed")
		return newTransportError(r.op, err)
	}
	defer resp.Body.Close()

	c.metrics.observe(r.op, strconv.Itoa(resp.StatusCode), elapsed)
	c.logger.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", elapsed).
		Msg("Meeting bot API request")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newResponseError(r.op, resp, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := decodeBody(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// escapePath builds a path from escaped segments
func escapePath(segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}
