package coordinator

import (
	"math/rand/v2"
	"time"
)

const (
	// DefaultInterval is the time between scheduled sweeps
	DefaultInterval = 24 * time.Hour
	// jitterFraction bounds the random offset applied to each interval (±5%)
	jitterFraction = 0.05
)

// nextInterval returns base with a random jitter applied so that replicas
// started together do not sweep together.
func nextInterval(base time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultInterval
	}
	jitter := time.Duration(float64(base) * jitterFraction)
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for scheduling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + offset
}
