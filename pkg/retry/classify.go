package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jzx17/callguard/pkg/types"
)

// Kind is the retry category of a failure
type Kind int

const (
	// Fatal failures are returned immediately
	Fatal Kind = iota
	// Retryable failures are retried on the exponential curve
	Retryable
	// RateLimited failures are retried, honouring a server hint when present
	RateLimited
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Retryable:
		return "retryable"
	case RateLimited:
		return "rate_limited"
	default:
		return "fatal"
	}
}

// Classification is the verdict for a single failed attempt
type Classification struct {
	Kind Kind

	// RetryAfter is the server hint, only meaningful for RateLimited
	RetryAfter time.Duration

	// Reason is a short low-cardinality explanation, e.g. "structured", "message"
	Reason string
}

// IsRetryable reports whether the failure may be retried
func (c Classification) IsRetryable() bool {
	return c.Kind == Retryable || c.Kind == RateLimited
}

// Classifier maps an error to a classification
type Classifier func(error) Classification

// RetryAfterError is implemented by errors that carry a retry-after hint
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

var (
	rateLimitMarkers = []string{"rate limit", "too many requests", "429"}
	transientMarkers = []string{
		"timeout",
		"timed out",
		"connection",
		"network",
		"temporary",
		"unavailable",
		"502",
		"503",
	}
)

type classifierConfig struct {
	markers    []string
	allowlist  []error
	allowFuncs []func(error) bool
}

// ClassifierOption configures NewClassifier
type ClassifierOption func(*classifierConfig)

// WithRetryableMarkers adds lowercase message substrings treated as transient
func WithRetryableMarkers(markers ...string) ClassifierOption {
	return func(c *classifierConfig) {
		for _, m := range markers {
			c.markers = append(c.markers, strings.ToLower(m))
		}
	}
}

// WithRetryableErrors marks errors matching any target (errors.Is) as retryable
func WithRetryableErrors(targets ...error) ClassifierOption {
	return func(c *classifierConfig) {
		c.allowlist = append(c.allowlist, targets...)
	}
}

// WithRetryableFunc marks errors accepted by fn as retryable
func WithRetryableFunc(fn func(error) bool) ClassifierOption {
	return func(c *classifierConfig) {
		if fn != nil {
			c.allowFuncs = append(c.allowFuncs, fn)
		}
	}
}

// NewClassifier builds the default classifier. Structured errors are inspected first,
// the error message is scanned as a fallback, and the caller allowlist decides the rest.
func NewClassifier(opts ...ClassifierOption) Classifier {
	cfg := &classifierConfig{
		markers: append([]string(nil), transientMarkers...),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(err error) Classification {
		if err == nil {
			return Classification{Kind: Fatal, Reason: "nil"}
		}
		// a deadline is left to the timeout checks: http.Client and per-call
		// deadlines surface as context.DeadlineExceeded
		if errors.Is(err, context.Canceled) {
			return Classification{Kind: Fatal, Reason: "context"}
		}

		if c, ok := classifyStructured(err); ok {
			return c
		}
		if c, ok := classifyMessage(err, cfg.markers); ok {
			return c
		}

		for _, target := range cfg.allowlist {
			if errors.Is(err, target) {
				return Classification{Kind: Retryable, Reason: "allowlist"}
			}
		}
		for _, fn := range cfg.allowFuncs {
			if fn(err) {
				return Classification{Kind: Retryable, Reason: "allowlist"}
			}
		}

		return Classification{Kind: Fatal, Reason: "default"}
	}
}

// DefaultClassifier classifies with no caller allowlist
func DefaultClassifier(err error) Classification {
	return defaultClassifier(err)
}

var defaultClassifier = NewClassifier()

// SourceControlClassifier also treats "500" in messages as transient
func SourceControlClassifier() Classifier {
	return NewClassifier(WithRetryableMarkers("500"))
}

func classifyStructured(err error) (Classification, bool) {
	if callErr, ok := types.AsCallError(err); ok && callErr.Kind != types.KindUnknown {
		switch callErr.Kind {
		case types.KindRateLimit:
			return Classification{Kind: RateLimited, RetryAfter: callErr.RetryAfter, Reason: "structured"}, true
		case types.KindNetwork, types.KindTimeout, types.KindServer, types.KindUnavailable:
			return Classification{Kind: Retryable, Reason: "structured"}, true
		default:
			return Classification{Kind: Fatal, Reason: "structured"}, true
		}
	}

	var hinted RetryAfterError
	if errors.As(err, &hinted) && hinted.RetryAfter() > 0 {
		return Classification{Kind: RateLimited, RetryAfter: hinted.RetryAfter(), Reason: "structured"}, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Classification{Kind: Retryable, Reason: "structured"}, true
	}

	return Classification{}, false
}

func classifyMessage(err error, markers []string) (Classification, bool) {
	msg := strings.ToLower(err.Error())

	if containsAny(msg, rateLimitMarkers) ||
		(strings.Contains(msg, "403") && strings.Contains(msg, "abuse")) {
		return Classification{Kind: RateLimited, RetryAfter: types.GetRetryAfter(err), Reason: "message"}, true
	}
	if containsAny(msg, markers) {
		return Classification{Kind: Retryable, Reason: "message"}, true
	}
	return Classification{}, false
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
