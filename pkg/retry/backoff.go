// Package retry provides the backoff delay calculation
package retry

import (
	"math/rand"
	"time"
)

// MinDelay is the floor applied to jittered delays so a retry never busy-loops
const MinDelay = time.Millisecond

// RandomFunc returns a uniform sample in [0, 1)
type RandomFunc func() float64

// Backoff computes the wait before retry number attempt (0-based).
// A rate-limit hint wins over the curve and is used as min(hint, max delay) without jitter.
// Otherwise the curve value gets symmetric jitter drawn from u and is floored at MinDelay.
// Rate-limited failures without a hint follow the policy's RateLimitDelay curve.
func Backoff(policy Policy, attempt int, class Classification, u RandomFunc) time.Duration {
	if class.Kind == RateLimited {
		if class.RetryAfter > 0 {
			if class.RetryAfter > policy.MaxDelay() {
				return policy.MaxDelay()
			}
			return class.RetryAfter
		}
		return ApplyJitter(policy.RateLimitDelay(attempt), policy.JitterFraction(), u)
	}

	return ApplyJitter(policy.Delay(attempt), policy.JitterFraction(), u)
}

// ApplyJitter offsets delay by a uniform amount in [-delay*fraction, +delay*fraction]
func ApplyJitter(delay time.Duration, fraction float64, u RandomFunc) time.Duration {
	if fraction > 0 {
		if u == nil {
			u = rand.Float64
		}
		jitterRange := float64(delay) * fraction
		offset := (2*u() - 1) * jitterRange
		delay += time.Duration(offset)
	}

	if delay < MinDelay {
		delay = MinDelay
	}
	return delay
}
