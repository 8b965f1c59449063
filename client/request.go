package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Response is a raw hierarchy service response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// Execute sends an authenticated request to the hierarchy service.
//
// path is resolved against the base URL with standard base-URL-join
// semantics. payload is sent as-is when it is a []byte or json.RawMessage and
// JSON-encoded otherwise; nil sends no body. query may be nil.
//
// A 4xx/5xx response is returned as *APIError. Requests are never retried.
func (a *Adapter) Execute(ctx context.Context, method, path string, payload interface{}, query url.Values) (*Response, error) {
	// 1. Authenticate
	token, err := a.auth.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	// 2. Build URL
	apiURL := resolveURL(a.baseURL, path, query)

	// 3. Serialize body if present
	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := encodePayload(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	// 4. Create request
	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 5. Set headers
	if token != "" {
		req.Header.Set("Authorization", token)
	} else {
		a.logger.WarnContext(ctx, "sending hierarchy request without access token",
			slog.String("method", method), slog.String("url", apiURL))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	// 6. Execute request
	start := a.opts.now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, apiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	ok := isSuccessStatus(resp.StatusCode)
	a.metrics.observeRequest(method, resp.StatusCode, a.opts.now().Sub(start).Seconds())
	a.logger.InfoContext(ctx, "hierarchy response",
		slog.String("method", method),
		slog.String("url", apiURL),
		slog.Bool("ok", ok),
		slog.Int("status", resp.StatusCode))

	// 7. Check status code
	if !ok {
		return nil, newAPIErrorFromResponse(resp.StatusCode, respBody, method, apiURL)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func encodePayload(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return b, nil
}

// resolveURL joins ref onto base and appends query. A relative path replaces
// the base's path component; an absolute URL overrides base entirely.
func resolveURL(base *url.URL, ref string, query url.Values) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		// Let http.NewRequest report the malformed URL.
		return base.String() + ref
	}
	u := base.ResolveReference(refURL)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
