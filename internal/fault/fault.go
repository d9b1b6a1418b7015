package fault

import (
	"errors"
	"fmt"
)

// ValidationError is raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// HTTPError is a non-2xx response. Detail carries the backend message when present.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// BusinessError is a 2xx response whose envelope reports success=false.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// UserMessage returns the backend-supplied detail when the error carries one,
// otherwise the operation's fixed fallback string.
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}

	var bizErr *BusinessError
	if errors.As(err, &bizErr) && bizErr.Message != "" {
		return bizErr.Message
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}

	return fallback
}
