package types

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrRateLimited", ErrRateLimited},
		{"ErrUnavailable", ErrUnavailable},
		{"ErrTimeout", ErrTimeout},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrInvalidRequest", ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestCallError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CallError
		want string
	}{
		{
			name: "service and status",
			err:  NewCallError(KindServer, "github", "bad gateway").WithStatus(502),
			want: "github: status 502: bad gateway",
		},
		{
			name: "service only",
			err:  NewCallError(KindNetwork, "anthropic", "connection reset"),
			want: "anthropic: connection reset",
		},
		{
			name: "status only",
			err:  NewCallError(KindAuth, "", "bad credentials").WithStatus(401),
			want: "status 401: bad credentials",
		},
		{
			name: "message from cause",
			err:  NewCallError(KindTimeout, "", "").WithCause(errors.New("i/o timeout")),
			want: "i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallError_Is(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		target error
		want   bool
	}{
		{KindRateLimit, ErrRateLimited, true},
		{KindServer, ErrUnavailable, true},
		{KindUnavailable, ErrUnavailable, true},
		{KindTimeout, ErrTimeout, true},
		{KindAuth, ErrUnauthorized, true},
		{KindInvalidRequest, ErrInvalidRequest, true},
		{KindAuth, ErrRateLimited, false},
		{KindRejected, ErrInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.kind, tt.target), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewCallError(tt.kind, "svc", "boom"))
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewCallError(KindNetwork, "github", "request failed").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestRateLimitError(t *testing.T) {
	err := RateLimitError("github", 30*time.Second)

	if err.Kind != KindRateLimit {
		t.Errorf("expected KindRateLimit, got %v", err.Kind)
	}
	if err.StatusCode != 429 {
		t.Errorf("expected status 429, got %d", err.StatusCode)
	}

	wrapped := fmt.Errorf("create issue: %w", err)
	if got := GetRetryAfter(wrapped); got != 30*time.Second {
		t.Errorf("GetRetryAfter() = %v, want 30s", got)
	}
	if got := GetRetryAfter(errors.New("plain")); got != 0 {
		t.Errorf("GetRetryAfter() on plain error = %v, want 0", got)
	}
}

func TestAsCallError(t *testing.T) {
	original := NewCallError(KindRejected, "github", "validation failed").WithStatus(422)
	wrapped := fmt.Errorf("outer: %w", original)

	got, ok := AsCallError(wrapped)
	if !ok {
		t.Fatal("expected to find CallError")
	}
	if got != original {
		t.Error("expected the original CallError pointer")
	}

	if _, ok := AsCallError(errors.New("plain")); ok {
		t.Error("expected no CallError in plain error")
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindUnknown:        "unknown",
		KindNetwork:        "network",
		KindTimeout:        "timeout",
		KindServer:         "server",
		KindUnavailable:    "unavailable",
		KindRateLimit:      "rate_limit",
		KindAuth:           "auth",
		KindInvalidRequest: "invalid_request",
		KindRejected:       "rejected",
		ErrorKind(99):      "unknown",
	}

	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
