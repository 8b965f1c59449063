// Package hierarchy provides a Go client for the organisation hierarchy service.
//
// Basic usage:
//
//	import hierarchy "github.com/vaintrub/hierarchy-go"
//
//	c, err := hierarchy.NewClient(endpoint, orgID, clientID, clientSecret,
//	    hierarchy.WithAuthURL(authURL),
//	    hierarchy.WithAudience(audience))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	root, err := c.GetRoot(ctx)
package hierarchy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/models"
)

// Re-export client types for convenient access
type (
	// Client defines the interface for interacting with the hierarchy service.
	Client = client.Client

	// TokenCache stores formatted access tokens with a time-to-live.
	TokenCache = client.TokenCache

	// Filter is a single-clause $filter expression.
	Filter = client.Filter

	// TreeNode is a node with its children attached.
	TreeNode = client.TreeNode

	// TokenInfo describes the claims of an access token.
	TokenInfo = client.TokenInfo

	// APIError represents a 4xx/5xx response from the hierarchy service.
	APIError = client.APIError

	// AuthError represents a failed token request.
	AuthError = client.AuthError

	// StructuralError reports a response missing a required field.
	StructuralError = client.StructuralError

	// ValidationError represents a client-side validation error.
	ValidationError = client.ValidationError

	// Option configures the client.
	Option = client.Option
)

// Re-export model types for convenient access
type (
	// HierarchyNode represents a node returned by the service.
	HierarchyNode = models.HierarchyNode
	// NodeCreate represents the data needed to upsert a node.
	NodeCreate = models.NodeCreate
	// NodeType classifies a node.
	NodeType = models.NodeType
)

// Re-export sentinel errors
var (
	// ErrBadRequest indicates a 400 Bad Request response.
	ErrBadRequest = client.ErrBadRequest
	// ErrUnauthorized indicates a 401 Unauthorized response.
	ErrUnauthorized = client.ErrUnauthorized
	// ErrForbidden indicates a 403 Forbidden response.
	ErrForbidden = client.ErrForbidden
	// ErrNotFound indicates a 404 Not Found response.
	ErrNotFound = client.ErrNotFound
	// ErrConflict indicates a 409 Conflict response.
	ErrConflict = client.ErrConflict
	// ErrRateLimited indicates a 429 Too Many Requests response.
	ErrRateLimited = client.ErrRateLimited
	// ErrServerError indicates a 5xx server error response.
	ErrServerError = client.ErrServerError
	// ErrAuthentication indicates the token service rejected the credentials.
	ErrAuthentication = client.ErrAuthentication
	// ErrMissingField indicates a response lacked a required field.
	ErrMissingField = client.ErrMissingField
	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = client.ErrInvalidInput
)

// NewClient creates a new hierarchy client.
//
// Parameters:
//   - endpoint: base URL of the hierarchy service
//   - orgID: organisation id (UUID)
//   - clientID, clientSecret: client-credentials pair for the token service
//   - opts: Optional configuration options
//
// Returns an error if required parameters are missing.
func NewClient(endpoint, orgID, clientID, clientSecret string, opts ...Option) (Client, error) {
	return client.New(endpoint, orgID, clientID, clientSecret, opts...)
}

// ShortCode derives a node short code from a display name.
func ShortCode(name string) string {
	return client.ShortCode(name)
}

// WithTimeout sets the HTTP client timeout.
// Default: 10s
func WithTimeout(d time.Duration) Option {
	return client.WithTimeout(d)
}

// WithHTTPClient sets a custom HTTP client.
// When set, this overrides the timeout option.
func WithHTTPClient(c *http.Client) Option {
	return client.WithHTTPClient(c)
}

// WithLogger sets the logger used for request and token diagnostics.
func WithLogger(l *slog.Logger) Option {
	return client.WithLogger(l)
}

// WithTokenCache sets the token cache.
// Default: a process-wide in-memory cache
func WithTokenCache(c TokenCache) Option {
	return client.WithTokenCache(c)
}

// WithAuthURL sets the base URL of the token service.
// Default: the hierarchy endpoint
func WithAuthURL(u string) Option {
	return client.WithAuthURL(u)
}

// WithAudience sets the audience requested with each token.
func WithAudience(audience string) Option {
	return client.WithAudience(audience)
}

// WithHierarchyType sets the hierarchy type segment of every node path.
// Default: location
func WithHierarchyType(t string) Option {
	return client.WithHierarchyType(t)
}
