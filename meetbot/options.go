package meetbot

import "net/http"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of httpClient for all requests. The copy's Timeout
// is set to the configured timeout; the transport is shared.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			hc := *httpClient
			c.httpClient = &hc
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// reservedHeaders are set by the client on every request
var reservedHeaders = map[string]bool{
	"Accept":       true,
	"Content-Type": true,
	"User-Agent":   true,
	"X-Api-Key":    true,
	"X-Request-Id": true,
}

// WithHeader adds a header sent with every request. Accept, Content-Type,
// User-Agent, X-API-Key and X-Request-ID are ignored; use WithUserAgent for the
// user agent and pass API keys per call.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if reservedHeaders[http.CanonicalHeaderKey(key)] {
			return
		}
		c.headers.Set(key, value)
	}
}

// WithMetrics records per-operation request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
