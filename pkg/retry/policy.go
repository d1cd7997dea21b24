// Package retry provides retry policies and presets
package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPolicy is returned when a policy is constructed with inconsistent parameters
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy is an immutable retry policy. The zero value is not valid; use NewPolicy.
type Policy struct {
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	multiplier     float64
	jitterFraction float64
	rateLimitScale float64
}

// PolicyOption is a configuration option for retry policies
type PolicyOption func(*Policy)

// WithMaxDelay sets the maximum delay time
func WithMaxDelay(maxDelay time.Duration) PolicyOption {
	return func(p *Policy) {
		p.maxDelay = maxDelay
	}
}

// WithMultiplier sets the multiplier for exponential backoff
func WithMultiplier(multiplier float64) PolicyOption {
	return func(p *Policy) {
		p.multiplier = multiplier
	}
}

// WithJitter sets the symmetric jitter fraction, 0 disables jitter
func WithJitter(fraction float64) PolicyOption {
	return func(p *Policy) {
		p.jitterFraction = fraction
	}
}

// WithRateLimitMultiplier stretches the curve for rate-limited failures that
// carry no retry-after hint. 1 (the default) uses the plain curve.
func WithRateLimitMultiplier(m float64) PolicyOption {
	return func(p *Policy) {
		p.rateLimitScale = m
	}
}

// NewPolicy creates a retry policy. maxAttempts is the number of retries after the
// initial attempt. Defaults: max delay 60s, multiplier 2, jitter 10%.
func NewPolicy(maxAttempts int, baseDelay time.Duration, opts ...PolicyOption) (Policy, error) {
	p := Policy{
		maxAttempts:    maxAttempts,
		baseDelay:      baseDelay,
		maxDelay:       60 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.1,
		rateLimitScale: 1.0,
	}

	for _, opt := range opts {
		opt(&p)
	}

	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// MustPolicy is like NewPolicy but panics on invalid parameters
func MustPolicy(maxAttempts int, baseDelay time.Duration, opts ...PolicyOption) Policy {
	p, err := NewPolicy(maxAttempts, baseDelay, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Policy) validate() error {
	switch {
	case p.maxAttempts < 0:
		return fmt.Errorf("%w: max attempts must be non-negative, got %d", ErrInvalidPolicy, p.maxAttempts)
	case p.baseDelay <= 0:
		return fmt.Errorf("%w: base delay must be positive, got %v", ErrInvalidPolicy, p.baseDelay)
	case p.maxDelay < p.baseDelay:
		return fmt.Errorf("%w: max delay %v is less than base delay %v", ErrInvalidPolicy, p.maxDelay, p.baseDelay)
	case math.IsNaN(p.multiplier) || p.multiplier <= 1.0:
		return fmt.Errorf("%w: multiplier must be greater than 1, got %v", ErrInvalidPolicy, p.multiplier)
	case math.IsNaN(p.jitterFraction) || p.jitterFraction < 0 || p.jitterFraction > 1:
		return fmt.Errorf("%w: jitter fraction must be within [0, 1], got %v", ErrInvalidPolicy, p.jitterFraction)
	case math.IsNaN(p.rateLimitScale) || math.IsInf(p.rateLimitScale, 0) || p.rateLimitScale < 1.0:
		return fmt.Errorf("%w: rate limit multiplier must be at least 1, got %v", ErrInvalidPolicy, p.rateLimitScale)
	}
	return nil
}

// MaxAttempts returns the maximum number of retries after the first attempt
func (p Policy) MaxAttempts() int { return p.maxAttempts }

// BaseDelay returns the delay before the first retry
func (p Policy) BaseDelay() time.Duration { return p.baseDelay }

// MaxDelay returns the delay cap
func (p Policy) MaxDelay() time.Duration { return p.maxDelay }

// Multiplier returns the exponential growth factor
func (p Policy) Multiplier() float64 { return p.multiplier }

// JitterFraction returns the symmetric jitter fraction
func (p Policy) JitterFraction() float64 { return p.jitterFraction }

// RateLimitMultiplier returns the curve factor for rate-limited failures without a hint
func (p Policy) RateLimitMultiplier() float64 { return p.rateLimitScale }

// IsZero reports whether p was never constructed
func (p Policy) IsZero() bool { return p.baseDelay == 0 }

// Delay returns the un-jittered backoff for a 0-based retry index:
// min(base * multiplier^attempt, max).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.baseDelay) * math.Pow(p.multiplier, float64(attempt))
	if math.IsInf(delay, 0) || delay >= float64(p.maxDelay) {
		return p.maxDelay
	}
	return time.Duration(delay)
}

// RateLimitDelay is Delay scaled by the rate limit multiplier, capped at max
func (p Policy) RateLimitDelay(attempt int) time.Duration {
	delay := p.Delay(attempt)
	if p.rateLimitScale <= 1 {
		return delay
	}
	scaled := float64(delay) * p.rateLimitScale
	if scaled >= float64(p.maxDelay) {
		return p.maxDelay
	}
	return time.Duration(scaled)
}

// String returns a compact description of the policy
func (p Policy) String() string {
	s := fmt.Sprintf("retries=%d base=%v max=%v multiplier=%g jitter=%g",
		p.maxAttempts, p.baseDelay, p.maxDelay, p.multiplier, p.jitterFraction)
	if p.rateLimitScale > 1 {
		s += fmt.Sprintf(" rate_limit=%g", p.rateLimitScale)
	}
	return s
}

// DefaultPolicy is a general-purpose policy: 3 retries from 1s up to 60s, 10% jitter
func DefaultPolicy() Policy {
	return MustPolicy(3, time.Second,
		WithMaxDelay(60*time.Second),
		WithMultiplier(2.0),
		WithJitter(0.1))
}

// AIServicePolicy suits AI model APIs: 5 retries from 1s up to 60s, 10% jitter
func AIServicePolicy() Policy {
	return MustPolicy(5, time.Second,
		WithMaxDelay(60*time.Second),
		WithMultiplier(2.0),
		WithJitter(0.1))
}

// SourceControlPolicy suits rate-limited source-control APIs: 5 retries from 2s up to 120s, 15% jitter
func SourceControlPolicy() Policy {
	return MustPolicy(5, 2*time.Second,
		WithMaxDelay(120*time.Second),
		WithMultiplier(2.0),
		WithJitter(0.15))
}

// NetworkPolicy suits plain network calls: 3 retries from 500ms up to 30s, 20% jitter
func NetworkPolicy() Policy {
	return MustPolicy(3, 500*time.Millisecond,
		WithMaxDelay(30*time.Second),
		WithMultiplier(2.0),
		WithJitter(0.2))
}
