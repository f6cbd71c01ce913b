package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-200 answer from an upstream API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// UpstreamError is an error reported inside an otherwise successful response.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string { return "upstream error: " + e.Message }

type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRetryable reports whether another attempt could succeed. Client errors,
// bad payloads, missing credentials and rate limits are final for this call.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrRateLimited) {
		return false
	}
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return false
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= http.StatusInternalServerError
	}
	return true
}
