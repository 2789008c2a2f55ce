package enquiry

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed lookup.
type ErrorKind string

// Lookup error kinds
const (
	// KindNotFound means the plate is unknown to the registry. Terminal.
	KindNotFound ErrorKind = "not-found"
	// KindAccessDenied means the credential was rejected. Terminal and needs
	// operator attention.
	KindAccessDenied ErrorKind = "access-denied"
	// KindThrottled means the registry asked us to slow down. Retryable with
	// a longer wait.
	KindThrottled ErrorKind = "throttled"
	// KindNetwork covers 5xx responses, malformed bodies, timeouts and
	// transport failures. Retryable.
	KindNetwork ErrorKind = "network"
)

// Terminal reports whether retrying an error of this kind is futile.
func (k ErrorKind) Terminal() bool {
	return k == KindNotFound || k == KindAccessDenied
}

// String returns the kind name
func (k ErrorKind) String() string {
	return string(k)
}

// LookupError is the failure returned by Client.Lookup once retries are
// exhausted or a terminal response is received.
type LookupError struct {
	Kind         ErrorKind
	Registration string
	StatusCode   int
	Attempts     int
	Err          error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("lookup %s failed (%s) after %d attempt(s)", e.Registration, e.Kind, e.Attempts)
	}
	return fmt.Sprintf("lookup %s failed (%s) after %d attempt(s): %v", e.Registration, e.Kind, e.Attempts, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ErrorKindOf returns the classification carried by err, or KindNetwork for
// errors that did not come from a lookup.
func ErrorKindOf(err error) ErrorKind {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Kind
	}
	return KindNetwork
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAccessDenied
	case http.StatusTooManyRequests:
		return KindThrottled
	default:
		return KindNetwork
	}
}
