package enquiry

import (
	"time"
)

// ExponentialDelay is the wait before attempt n+1 after a network-class
// failure on attempt n: base * 2^(n-1).
func ExponentialDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// LinearDelay is the wait before attempt n+1 after a throttled attempt n:
// base * n.
func LinearDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// DelayPolicy holds the base delays of both retry strategies.
type DelayPolicy struct {
	// Base is the base delay for network-class failures.
	Base time.Duration
	// ThrottleBase is the base delay after a throttled response.
	ThrottleBase time.Duration
}

// Delay returns the wait before the attempt following a failed attempt of
// the given kind.
func (p DelayPolicy) Delay(attempt int, kind ErrorKind) time.Duration {
	if kind == KindThrottled {
		return LinearDelay(p.ThrottleBase, attempt)
	}
	return ExponentialDelay(p.Base, attempt)
}

// RetryAfterCap bounds a Retry-After hint to the longest linear throttle
// wait the lookup could schedule on its own: ThrottleBase * maxAttempts.
func (p DelayPolicy) RetryAfterCap(maxAttempts int) time.Duration {
	return LinearDelay(p.ThrottleBase, maxAttempts)
}

// attemptBackOff implements backoff.BackOff for a single lookup. The
// operation records the kind (and any server hint) of each failure before
// returning it so NextBackOff can pick the matching strategy.
type attemptBackOff struct {
	policy      DelayPolicy
	maxAttempts int
	attempt     int
	lastKind    ErrorKind
	retryAfter  time.Duration
}

func (b *attemptBackOff) record(kind ErrorKind, retryAfter time.Duration) {
	b.lastKind = kind
	b.retryAfter = retryAfter
}

// NextBackOff implements backoff.BackOff. A throttled wait is the linear
// delay, raised to the server's Retry-After hint when that is longer, but
// never beyond RetryAfterCap.
func (b *attemptBackOff) NextBackOff() time.Duration {
	b.attempt++
	d := b.policy.Delay(b.attempt, b.lastKind)
	if b.lastKind == KindThrottled && b.retryAfter > d {
		d = min(b.retryAfter, max(d, b.policy.RetryAfterCap(b.maxAttempts)))
	}
	return d
}

// Reset implements backoff.BackOff
func (b *attemptBackOff) Reset() {
	b.attempt = 0
	b.lastKind = ""
	b.retryAfter = 0
}
