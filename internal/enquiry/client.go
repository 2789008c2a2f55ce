// Package enquiry is the client for the external vehicle registry. It issues
// one lookup per registration plate, classifies failures and retries the
// retryable ones with backoff. It knows nothing about batching or storage.
package enquiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mydv/vrsync/internal/httpclient"
	"github.com/mydv/vrsync/internal/otel"
	"github.com/mydv/vrsync/internal/vehicles"
)

const (
	// DefaultMaxAttempts is the retry ceiling: total network calls per lookup.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the base of the exponential network-failure backoff.
	DefaultBaseDelay = time.Second

	// DefaultThrottleDelay is the base of the linear throttling backoff.
	DefaultThrottleDelay = 5 * time.Second

	// APIKeyHeader carries the registry credential.
	APIKeyHeader = "x-api-key"
)

// ErrMissingCredential is returned by NewClient when no API key is configured.
var ErrMissingCredential = errors.New("registry API key is required")

// Result is a successful lookup.
type Result struct {
	Facts *vehicles.Facts
	// Attempts is the number of network calls the lookup took.
	Attempts int
}

// Client looks up a single registration in the external registry.
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/mydv/vrsync/internal/enquiry Client
type Client interface {
	// Lookup returns the registry facts for registration. Failures are
	// returned as *LookupError.
	Lookup(ctx context.Context, registration string) (*Result, error)
}

type lookupRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
}

// registryClient is the HTTP implementation of Client
type registryClient struct {
	http        httpclient.Client
	endpoint    string
	apiKey      string
	timeout     time.Duration
	maxAttempts int
	delays      DelayPolicy
	tracer      trace.Tracer
}

// Option configures the registry client
type Option func(*registryClient)

// WithHTTPClient sets the HTTP transport
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *registryClient) {
		c.http = client
	}
}

// WithTimeout sets the hard per-attempt timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *registryClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxAttempts sets the total number of calls allowed per lookup
func WithMaxAttempts(attempts int) Option {
	return func(c *registryClient) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithDelayPolicy sets the retry delays
func WithDelayPolicy(policy DelayPolicy) Option {
	return func(c *registryClient) {
		c.delays = policy
	}
}

// WithTracer sets the tracer used for lookup spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *registryClient) {
		c.tracer = tracer
	}
}

// NewClient creates a registry client for endpoint. The credential is
// checked here, once, rather than on every request.
func NewClient(endpoint, apiKey string, opts ...Option) (Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("registry endpoint is required")
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	c := &registryClient{
		endpoint:    endpoint,
		apiKey:      apiKey,
		timeout:     httpclient.DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		delays: DelayPolicy{
			Base:         DefaultBaseDelay,
			ThrottleBase: DefaultThrottleDelay,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewDefaultClient(c.timeout)
	}

	return c, nil
}

// attemptFailure describes one failed call
type attemptFailure struct {
	kind       ErrorKind
	statusCode int
	retryAfter time.Duration
	err        error
}

// Lookup implements Client
func (c *registryClient) Lookup(ctx context.Context, registration string) (*Result, error) {
	reg := vehicles.NormalizeRegistration(registration)
	if reg == "" {
		return nil, &LookupError{
			Kind:         KindNotFound,
			Registration: registration,
			Err:          errors.New("registration is empty"),
		}
	}

	ctx, span := otel.StartSpan(ctx, c.tracer, "enquiry.Lookup",
		trace.WithAttributes(otel.AttrRegistration.String(reg)))
	defer span.End()

	body, err := json.Marshal(lookupRequest{RegistrationNumber: reg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup request: %w", err)
	}
	header := http.Header{}
	header.Set(APIKeyHeader, c.apiKey)

	policy := &attemptBackOff{policy: c.delays, maxAttempts: c.maxAttempts}
	attempts := 0
	var lastStatus int
	lastKind := KindNetwork

	operation := func() (*vehicles.Facts, error) {
		attempts++
		facts, failure := c.attempt(ctx, body, header)
		if failure == nil {
			return facts, nil
		}

		lastStatus = failure.statusCode
		lastKind = failure.kind
		policy.record(failure.kind, failure.retryAfter)
		lookupErr := &LookupError{
			Kind:         failure.kind,
			Registration: reg,
			StatusCode:   failure.statusCode,
			Err:          failure.err,
		}
		if failure.kind.Terminal() {
			return nil, backoff.Permanent(lookupErr)
		}
		return nil, lookupErr
	}

	facts, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Debug("Registry lookup failed, retrying",
				"registration", reg,
				"attempt", attempts,
				"kind", ErrorKindOf(err),
				"retry_in", next)
		}),
	)
	span.SetAttributes(attribute.Int("lookup.attempts", attempts))
	if err != nil {
		var lookupErr *LookupError
		if !errors.As(err, &lookupErr) {
			// Cancellation of the caller's context ends the retry loop;
			// the last attempt's classification is kept.
			lookupErr = &LookupError{
				Kind:         lastKind,
				Registration: reg,
				StatusCode:   lastStatus,
				Err:          err,
			}
		}
		lookupErr.Attempts = attempts
		otel.RecordError(span, lookupErr)
		return nil, lookupErr
	}

	return &Result{Facts: facts, Attempts: attempts}, nil
}

// attempt performs a single bounded call to the registry
func (c *registryClient) attempt(ctx context.Context, body []byte, header http.Header) (*vehicles.Facts, *attemptFailure) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.http.PostJSON(attemptCtx, c.endpoint, body, header)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &attemptFailure{
				kind:       classifyStatus(httpErr.StatusCode),
				statusCode: httpErr.StatusCode,
				retryAfter: httpErr.RetryAfter,
				err:        err,
			}
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("attempt timed out after %s: %w", c.timeout, err)
		}
		return nil, &attemptFailure{kind: KindNetwork, err: err}
	}

	facts, err := decodeFacts(data)
	if err != nil {
		return nil, &attemptFailure{kind: KindNetwork, statusCode: http.StatusOK, err: err}
	}
	return facts, nil
}

// decodeFacts parses a registry response. A body without a registration
// number is treated as malformed.
func decodeFacts(data []byte) (*vehicles.Facts, error) {
	var facts vehicles.Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("malformed registry response: %w", err)
	}
	if facts.Registration == "" {
		return nil, fmt.Errorf("malformed registry response: registrationNumber missing")
	}
	facts.Raw = append([]byte(nil), data...)
	return &facts, nil
}
