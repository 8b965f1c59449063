package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Adapter implements the Client interface for the hierarchy service.
type Adapter struct {
	baseURL       *url.URL
	orgID         string
	hierarchyType string
	httpClient    *http.Client
	logger        *slog.Logger
	limiter       *rate.Limiter
	metrics       *metrics
	opts          *options

	auth *Authenticator
}

// New creates a new hierarchy client with the provided options.
//
// Parameters:
//   - endpoint: base URL of the hierarchy service (e.g., "https://hierarchy.example.net/")
//   - orgID: organisation id (UUID) every node operation is scoped to
//   - clientID, clientSecret: client-credentials pair for the token service
//
// Returns an error if required parameters are missing.
func New(endpoint, orgID, clientID, clientSecret string, opts ...Option) (*Adapter, error) {
	if endpoint == "" {
		return nil, &ValidationError{Field: "endpoint", Message: "cannot be empty"}
	}
	baseURL, err := url.Parse(endpoint)
	if err != nil || !baseURL.IsAbs() {
		return nil, &ValidationError{Field: "endpoint", Message: "must be an absolute URL"}
	}
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, &ValidationError{Field: "orgID", Message: "must be a UUID"}
	}
	if clientID == "" {
		return nil, &ValidationError{Field: "clientID", Message: "cannot be empty"}
	}
	if clientSecret == "" {
		return nil, &ValidationError{Field: "clientSecret", Message: "cannot be empty"}
	}

	// Apply options
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	authBase := baseURL
	if o.authURL != "" {
		authBase, err = url.Parse(o.authURL)
		if err != nil || !authBase.IsAbs() {
			return nil, &ValidationError{Field: "authURL", Message: "must be an absolute URL"}
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = o.responseHeaderTimeout
		transport.IdleConnTimeout = o.idleConnTimeout
		httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := o.tokenCache
	if cache == nil {
		cache = SharedTokenCache()
	}

	m := newMetrics()
	if err := m.register(o.registerer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	var limiter *rate.Limiter
	if o.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.rateLimit), o.rateBurst)
	}

	return &Adapter{
		baseURL:       baseURL,
		orgID:         orgID,
		hierarchyType: o.hierarchyType,
		httpClient:    httpClient,
		logger:        logger,
		limiter:       limiter,
		metrics:       m,
		opts:          o,
		auth: &Authenticator{
			tokenURL:     resolveURL(authBase, tokenPath, nil),
			clientID:     clientID,
			clientSecret: clientSecret,
			audience:     o.audience,
			httpClient:   httpClient,
			cache:        cache,
			logger:       logger,
			metrics:      m,
		},
	}, nil
}

// AccessToken returns the formatted access token used for hierarchy requests.
func (a *Adapter) AccessToken(ctx context.Context) (string, error) {
	return a.auth.AccessToken(ctx)
}

// Authenticator returns the adapter's token acquirer.
func (a *Adapter) Authenticator() *Authenticator {
	return a.auth
}

// OrganisationID returns the organisation the adapter is scoped to.
func (a *Adapter) OrganisationID() string {
	return a.orgID
}

// HierarchyType returns the hierarchy type the adapter is scoped to.
func (a *Adapter) HierarchyType() string {
	return a.hierarchyType
}
