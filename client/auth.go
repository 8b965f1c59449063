package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const tokenPath = "/oauth/token"

// AccessToken is the token endpoint's response.
type AccessToken struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds from issuance
}

// Formatted returns the Authorization header value, "{type} {token}".
func (t AccessToken) Formatted() string {
	return t.TokenType + " " + t.AccessToken
}

// Authenticator obtains bearer tokens with the client-credentials grant and
// keeps them in a TokenCache. It holds no token state of its own.
type Authenticator struct {
	tokenURL     string
	clientID     string
	clientSecret string
	audience     string
	httpClient   *http.Client
	cache        TokenCache
	logger       *slog.Logger
	metrics      *metrics

	flight singleflight.Group
}

// AccessToken returns the formatted access token, authenticating only when
// the cache has none. A cache hit performs no network I/O.
//
// If the token endpoint answers with a success status but without a token
// type or token value, AccessToken returns "" and a nil error.
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	token, ok, err := a.cache.Get(ctx, TokenCacheKey)
	if err != nil {
		return "", fmt.Errorf("read token cache: %w", err)
	}
	if ok {
		a.metrics.observeToken(tokenOutcomeCached)
		return token, nil
	}

	// Concurrent misses share one token request; the cache is checked again
	// inside the flight in case a previous flight just filled it. The flight
	// is detached from the caller that started it, so one caller cancelling
	// does not fail the others; each caller still stops waiting on its own
	// ctx. The HTTP client timeout bounds the detached request.
	flightCtx := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(TokenCacheKey, func() (interface{}, error) {
		token, ok, err := a.cache.Get(flightCtx, TokenCacheKey)
		if err != nil {
			return "", fmt.Errorf("read token cache: %w", err)
		}
		if ok {
			a.metrics.observeToken(tokenOutcomeCached)
			return token, nil
		}
		return a.authenticate(flightCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (a *Authenticator) authenticate(ctx context.Context) (string, error) {
	data := url.Values{}
	data.Set("client_id", a.clientID)
	data.Set("client_secret", a.clientSecret)
	data.Set("audience", a.audience)
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.metrics.observeToken(tokenOutcomeFailed)
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	const maxTokenResponseSize = 1024 * 1024 // 1MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		a.metrics.observeToken(tokenOutcomeFailed)
		return "", fmt.Errorf("failed to read token response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.metrics.observeToken(tokenOutcomeFailed)
		return "", &AuthError{StatusCode: resp.StatusCode, Body: body}
	}

	var token AccessToken
	if err := json.Unmarshal(body, &token); err != nil {
		a.metrics.observeToken(tokenOutcomeFailed)
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}

	if token.TokenType == "" || token.AccessToken == "" {
		a.metrics.observeToken(tokenOutcomeIncomplete)
		a.logger.WarnContext(ctx, "token response is missing fields",
			slog.Bool("has_token_type", token.TokenType != ""),
			slog.Bool("has_access_token", token.AccessToken != ""))
		return "", nil
	}

	formatted := token.Formatted()
	ttl := time.Duration(token.ExpiresIn) * time.Second
	if err := a.cache.Set(ctx, TokenCacheKey, formatted, ttl); err != nil {
		return "", fmt.Errorf("write token cache: %w", err)
	}
	a.metrics.observeToken(tokenOutcomeIssued)
	a.logger.DebugContext(ctx, "access token issued",
		slog.String("token_type", token.TokenType),
		slog.Int("expires_in", token.ExpiresIn))

	return formatted, nil
}
