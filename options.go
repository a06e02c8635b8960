package transloader

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for proxies and tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient supplies the *http.Client used for all requests. The
// caller owns timeout, proxy, and transport configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithClock overrides the time source used for auth expiry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithMiddleware wraps the client's transport with round-trip middleware.
// Middleware run in the order given, outermost first.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Client) { c.middleware = append(c.middleware, mws...) }
}
