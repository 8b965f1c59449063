package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Configuration constants
const (
	// TokenCacheKey is the cache key under which the formatted access token is stored.
	TokenCacheKey = "access_token"

	// Default configuration values
	defaultTimeout               = 10 * time.Second
	defaultResponseHeaderTimeout = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultHierarchyType         = "location"
	defaultRootName              = "Top Company"
)

// Option configures the Adapter.
type Option func(*options)

// options holds the configuration for the Adapter.
type options struct {
	timeout               time.Duration        // HTTP client timeout (default: 10s)
	responseHeaderTimeout time.Duration        // Timeout for waiting for response headers (default: 30s)
	idleConnTimeout       time.Duration        // How long idle connections stay in pool (default: 90s)
	httpClient            *http.Client         // Custom HTTP client (overrides all timeout options if set)
	logger                *slog.Logger         // Structured logger (default: slog.Default())
	tokenCache            TokenCache           // Token cache (default: process-wide memory cache)
	authURL               string               // Base URL of the token service (default: hierarchy endpoint)
	audience              string               // Audience requested for the access token
	hierarchyType         string               // Hierarchy type path segment (default: location)
	rateLimit             float64              // Requests per second to the hierarchy service (0 = unlimited)
	rateBurst             int                  // Rate limiter burst
	registerer            prometheus.Registerer // Metrics registry (nil = metrics not registered)
	now                   func() time.Time     // Clock used for request timing
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		timeout:               defaultTimeout,
		responseHeaderTimeout: defaultResponseHeaderTimeout,
		idleConnTimeout:       defaultIdleConnTimeout,
		hierarchyType:         defaultHierarchyType,
		now:                   time.Now,
	}
}

// WithTimeout sets the HTTP client timeout.
// Values <= 0 are ignored (default is used).
// Default: 10s
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithResponseHeaderTimeout sets the timeout for waiting for response headers.
// Default: 30s. Values <= 0 are ignored.
// Note: This option is ignored when WithHTTPClient is used.
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.responseHeaderTimeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
// When set, this overrides the timeout options.
// Nil values are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets a structured logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTokenCache sets the cache used to persist the access token between calls.
// Default: the process-wide memory cache returned by SharedTokenCache.
func WithTokenCache(c TokenCache) Option {
	return func(o *options) {
		if c != nil {
			o.tokenCache = c
		}
	}
}

// WithAuthURL sets the base URL of the token service.
// The token is requested from {authURL}/oauth/token.
func WithAuthURL(authURL string) Option {
	return func(o *options) {
		if authURL != "" {
			o.authURL = authURL
		}
	}
}

// WithAudience sets the audience sent with the client-credentials grant.
func WithAudience(audience string) Option {
	return func(o *options) {
		o.audience = audience
	}
}

// WithHierarchyType sets the hierarchy type path segment.
// Default: location
func WithHierarchyType(hierarchyType string) Option {
	return func(o *options) {
		if hierarchyType != "" {
			o.hierarchyType = hierarchyType
		}
	}
}

// WithRateLimit caps outbound requests to the hierarchy service at rps
// requests per second. Values <= 0 disable limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		if burst < 1 {
			burst = 1
		}
		o.rateBurst = burst
	}
}

// WithMetrics registers the client's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithClock overrides the clock used for request timing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
