package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned while the circuit breaker rejects requests.
var ErrCircuitOpen = errors.New("batchmates: circuit breaker open")

// ErrMalformedResponse is returned when a successful response lacks the
// fields the endpoint promises.
var ErrMalformedResponse = errors.New("batchmates: malformed response")

// APIError represents a structured error response from the batchmates API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("batchmates: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("batchmates: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func asAPIError(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.StatusCode == 404
}

// IsFetchFailed returns true if the server could not look up a node's neighbors.
func IsFetchFailed(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Code == "fetch_failed"
}

// IsConflict returns true if the error is a 409 conflict (stale session).
func IsConflict(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.StatusCode == 409
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.StatusCode == 429
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
