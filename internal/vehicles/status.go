package vehicles

import (
	"strings"
	"time"
)

// StatusBucket groups free-form roadworthiness status strings for reporting.
type StatusBucket string

// Status buckets
const (
	BucketValid   StatusBucket = "valid"
	BucketExpired StatusBucket = "expired"
	BucketUnknown StatusBucket = "unknown"
)

// ClassifyStatus buckets a roadworthiness status with a case-insensitive
// substring match. "invalid" is checked before "valid" since it contains it.
func ClassifyStatus(status string) StatusBucket {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "invalid"), strings.Contains(s, "expired"):
		return BucketExpired
	case strings.Contains(s, "valid"):
		return BucketValid
	default:
		return BucketUnknown
	}
}

// IsStale reports whether a record last checked at checkedAt is due for a
// refresh at now. A record that was never checked is always stale; otherwise
// it is stale once it is strictly older than now - threshold.
func IsStale(checkedAt *time.Time, now time.Time, threshold time.Duration) bool {
	if checkedAt == nil {
		return true
	}
	return checkedAt.Before(now.Add(-threshold))
}
