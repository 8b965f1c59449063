package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is()
var (
	// ErrNotFound indicates the requested node was not found (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates insufficient permissions (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid request parameters (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates a resource conflict, e.g., duplicate short code (HTTP 409).
	ErrConflict = errors.New("resource conflict")

	// ErrRateLimited indicates too many requests (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError = errors.New("server error")

	// ErrAuthentication indicates the token endpoint rejected the client credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrMissingField indicates an expected field was absent from a response envelope.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidInput indicates validation failure for input parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOpaqueToken indicates an access token that is not a JWT.
	ErrOpaqueToken = errors.New("access token is not a JWT")
)

// APIError represents a non-success response from the hierarchy service.
type APIError struct {
	StatusCode int    // HTTP status code
	Message    string // Error message from API
	Method     string // Request method
	URL        string // Resolved request URL
	Body       []byte // Raw response body (for debugging)
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("hierarchy api error (%s %s, status %d): %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("hierarchy api error (status %d): %s", e.StatusCode, e.Message)
}

// Is implements errors.Is() for comparing with sentinel errors.
func (e *APIError) Is(target error) bool {
	return statusMatches(e.StatusCode, target)
}

// AuthError represents a non-success response from the token endpoint.
type AuthError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("token request failed with status %d: %s", e.StatusCode, string(e.Body))
}

// Is matches ErrAuthentication and the sentinel for the status code.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthentication || statusMatches(e.StatusCode, target)
}

// StructuralError represents a response envelope missing a mandatory field.
type StructuralError struct {
	Field string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("response envelope has no %q field", e.Field)
}

// Unwrap returns ErrMissingField for error chain.
func (e *StructuralError) Unwrap() error {
	return ErrMissingField
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Validation error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is() for comparing with ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap returns ErrInvalidInput for error chain.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func statusMatches(status int, target error) bool {
	switch status {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 403:
		return target == ErrForbidden
	case 404:
		return target == ErrNotFound
	case 409:
		return target == ErrConflict
	case 429:
		return target == ErrRateLimited
	}
	if status >= 500 && status < 600 {
		return target == ErrServerError
	}
	return false
}

// newAPIErrorFromResponse creates an APIError with JSON parsing support.
// The service reports failures either as {"message": ...} or as RFC 7807
// problem details with "title"/"detail".
func newAPIErrorFromResponse(statusCode int, body []byte, method, url string) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    string(body),
		Method:     method,
		URL:        url,
		Body:       body,
	}

	var errResp struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		case errResp.Detail != "":
			apiErr.Message = errResp.Detail
		case errResp.Title != "":
			apiErr.Message = errResp.Title
		}
	}

	return apiErr
}

// isSuccessStatus reports whether the status code is not a 4xx/5xx failure.
func isSuccessStatus(code int) bool {
	return code < 400
}
