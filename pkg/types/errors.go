// Package types defines error types shared by callers and the retry core
package types

import (
	"errors"
	"fmt"
	"time"
)

// Predefined errors
var (
	// ErrRateLimited indicates the upstream service rejected the call due to request rate
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnavailable indicates the upstream service is temporarily unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates the call timed out
	ErrTimeout = errors.New("operation timeout")

	// ErrUnauthorized indicates the credentials were rejected
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRequest indicates the request was malformed
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorKind is the coarse category an upstream error producer assigns to a failure
type ErrorKind int

const (
	// KindUnknown means the producer did not classify the failure
	KindUnknown ErrorKind = iota
	// KindNetwork is a connection-level failure
	KindNetwork
	// KindTimeout is a request or read timeout
	KindTimeout
	// KindServer is a 5xx response
	KindServer
	// KindUnavailable is a busy or overloaded signal
	KindUnavailable
	// KindRateLimit is a rate-limit rejection, possibly carrying a retry-after hint
	KindRateLimit
	// KindAuth is an authentication or authorization failure
	KindAuth
	// KindInvalidRequest is a malformed request
	KindInvalidRequest
	// KindRejected is a business-logic rejection
	KindRejected
)

// String returns the string representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimit:
		return "rate_limit"
	case KindAuth:
		return "auth"
	case KindInvalidRequest:
		return "invalid_request"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// CallError is the minimal structured error shape upstream callers should produce
// for failed outbound calls.
type CallError struct {
	// Kind is the failure category
	Kind ErrorKind

	// Service names the upstream service, e.g. "github"
	Service string

	// StatusCode is the HTTP status code, 0 if not applicable
	StatusCode int

	// Message is the upstream error message
	Message string

	// RetryAfter is the server-provided retry hint, 0 if absent
	RetryAfter time.Duration

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *CallError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	switch {
	case e.Service != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, msg)
	case e.Service != "":
		return fmt.Sprintf("%s: %s", e.Service, msg)
	case e.StatusCode != 0:
		return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
	default:
		return msg
	}
}

// Unwrap returns the underlying error
func (e *CallError) Unwrap() error {
	return e.Cause
}

// Is matches the predefined errors by kind so errors.Is works without a Cause
func (e *CallError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimit
	case ErrUnavailable:
		return e.Kind == KindUnavailable || e.Kind == KindServer
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrInvalidRequest:
		return e.Kind == KindInvalidRequest
	}
	return false
}

// NewCallError creates a new call error
func NewCallError(kind ErrorKind, service, message string) *CallError {
	return &CallError{
		Kind:    kind,
		Service: service,
		Message: message,
	}
}

// RateLimitError creates a rate-limit error carrying a retry-after hint
func RateLimitError(service string, retryAfter time.Duration) *CallError {
	return &CallError{
		Kind:       KindRateLimit,
		Service:    service,
		StatusCode: 429,
		Message:    ErrRateLimited.Error(),
		RetryAfter: retryAfter,
	}
}

// WithStatus sets the status code
func (e *CallError) WithStatus(code int) *CallError {
	e.StatusCode = code
	return e
}

// WithCause sets the underlying error
func (e *CallError) WithCause(cause error) *CallError {
	e.Cause = cause
	return e
}

// AsCallError extracts a CallError from an error chain
func AsCallError(err error) (*CallError, bool) {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr, true
	}
	return nil, false
}

// GetRetryAfter returns the retry-after hint carried by err, 0 if none
func GetRetryAfter(err error) time.Duration {
	if callErr, ok := AsCallError(err); ok {
		return callErr.RetryAfter
	}
	return 0
}
