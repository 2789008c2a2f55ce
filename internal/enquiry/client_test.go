package enquiry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydv/vrsync/internal/enquiry"
)

// newTestServer creates a new test server with keep-alives disabled.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

// scriptedRegistry answers each call with the next status in statuses. The
// last status repeats once the script runs out.
type scriptedRegistry struct {
	statuses []int
	calls    atomic.Int32
	bodies   chan string
}

func newScriptedRegistry(statuses ...int) *scriptedRegistry {
	return &scriptedRegistry{statuses: statuses, bodies: make(chan string, 16)}
}

func (s *scriptedRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(s.calls.Add(1))
	body, _ := io.ReadAll(r.Body)
	select {
	case s.bodies <- string(body):
	default:
	}

	status := s.statuses[len(s.statuses)-1]
	if n <= len(s.statuses) {
		status = s.statuses[n-1]
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errors":[{"status":"` + http.StatusText(status) + `"}]}`))
		return
	}
	_, _ = w.Write([]byte(`{"registrationNumber":"AB12CDE","make":"FORD","motStatus":"Valid","motExpiryDate":"2027-03-01"}`))
}

func fastClient(t *testing.T, endpoint string, opts ...enquiry.Option) enquiry.Client {
	t.Helper()
	opts = append([]enquiry.Option{
		enquiry.WithDelayPolicy(enquiry.DelayPolicy{Base: time.Millisecond, ThrottleBase: time.Millisecond}),
		enquiry.WithTimeout(2 * time.Second),
	}, opts...)
	client, err := enquiry.NewClient(endpoint, "test-key", opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := enquiry.NewClient("http://registry.invalid/lookup", "")
	assert.ErrorIs(t, err, enquiry.ErrMissingCredential)

	_, err = enquiry.NewClient("", "key")
	assert.Error(t, err)

	client, err := enquiry.NewClient("http://registry.invalid/lookup", "key")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestLookup_Success(t *testing.T) {
	t.Parallel()

	var gotKey, gotBody string
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(enquiry.APIKeyHeader)
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"registrationNumber":"AB12CDE","make":"FORD","motStatus":"Valid","motExpiryDate":"2027-03-01"}`))
	}))
	defer server.Close()

	client := fastClient(t, server.URL)
	result, err := client.Lookup(context.Background(), "ab12 cde")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	var req map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotBody), &req))
	assert.Equal(t, "AB12CDE", req["registrationNumber"])

	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "AB12CDE", result.Facts.Registration)
	assert.Equal(t, "FORD", result.Facts.Make)
	assert.Equal(t, "Valid", result.Facts.RoadworthinessStatus)
	assert.Equal(t, "2027-03-01", result.Facts.RoadworthinessExpiryDate)
	assert.JSONEq(t, `{"registrationNumber":"AB12CDE","make":"FORD","motStatus":"Valid","motExpiryDate":"2027-03-01"}`,
		string(result.Facts.Raw))
}

func TestLookup_RetryBehaviour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		statuses     []int
		wantErr      bool
		wantKind     enquiry.ErrorKind
		wantCalls    int
		wantAttempts int
	}{
		{
			name:         "not found is terminal after one call",
			statuses:     []int{http.StatusNotFound},
			wantErr:      true,
			wantKind:     enquiry.KindNotFound,
			wantCalls:    1,
			wantAttempts: 1,
		},
		{
			name:         "forbidden is terminal after one call",
			statuses:     []int{http.StatusForbidden},
			wantErr:      true,
			wantKind:     enquiry.KindAccessDenied,
			wantCalls:    1,
			wantAttempts: 1,
		},
		{
			name:         "unauthorized is terminal after one call",
			statuses:     []int{http.StatusUnauthorized},
			wantErr:      true,
			wantKind:     enquiry.KindAccessDenied,
			wantCalls:    1,
			wantAttempts: 1,
		},
		{
			name:         "server errors exhaust the retry ceiling",
			statuses:     []int{http.StatusInternalServerError},
			wantErr:      true,
			wantKind:     enquiry.KindNetwork,
			wantCalls:    3,
			wantAttempts: 3,
		},
		{
			name:         "throttling followed by server errors stops at the ceiling",
			statuses:     []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusInternalServerError},
			wantErr:      true,
			wantKind:     enquiry.KindNetwork,
			wantCalls:    3,
			wantAttempts: 3,
		},
		{
			name:         "persistent throttling is reported as throttled",
			statuses:     []int{http.StatusTooManyRequests},
			wantErr:      true,
			wantKind:     enquiry.KindThrottled,
			wantCalls:    3,
			wantAttempts: 3,
		},
		{
			name:         "recovers after a transient failure",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusOK},
			wantCalls:    2,
			wantAttempts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := newScriptedRegistry(tt.statuses...)
			server := newTestServer(registry)
			defer server.Close()

			client := fastClient(t, server.URL)
			result, err := client.Lookup(context.Background(), "AB12CDE")

			assert.Equal(t, tt.wantCalls, int(registry.calls.Load()))
			if tt.wantErr {
				require.Error(t, err)
				var lookupErr *enquiry.LookupError
				require.ErrorAs(t, err, &lookupErr)
				assert.Equal(t, tt.wantKind, lookupErr.Kind)
				assert.Equal(t, tt.wantAttempts, lookupErr.Attempts)
				assert.Equal(t, "AB12CDE", lookupErr.Registration)
				assert.Equal(t, tt.wantKind, enquiry.ErrorKindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAttempts, result.Attempts)
		})
	}
}

func TestLookup_MaxAttemptsOption(t *testing.T) {
	t.Parallel()

	registry := newScriptedRegistry(http.StatusBadGateway)
	server := newTestServer(registry)
	defer server.Close()

	client := fastClient(t, server.URL, enquiry.WithMaxAttempts(1))
	_, err := client.Lookup(context.Background(), "AB12CDE")
	require.Error(t, err)
	assert.Equal(t, 1, int(registry.calls.Load()))
}

func TestLookup_MalformedResponseIsNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "missing registration", body: `{"make":"FORD"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := fastClient(t, server.URL)
			_, err := client.Lookup(context.Background(), "AB12CDE")
			require.Error(t, err)
			assert.Equal(t, enquiry.KindNetwork, enquiry.ErrorKindOf(err))
			assert.Equal(t, 3, int(calls.Load()))
		})
	}
}

func TestLookup_AttemptTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := fastClient(t, server.URL,
		enquiry.WithTimeout(20*time.Millisecond),
		enquiry.WithMaxAttempts(2))

	start := time.Now()
	_, err := client.Lookup(context.Background(), "AB12CDE")
	require.Error(t, err)

	var lookupErr *enquiry.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, enquiry.KindNetwork, lookupErr.Kind)
	assert.Equal(t, 2, lookupErr.Attempts)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLookup_CancelledContext(t *testing.T) {
	t.Parallel()

	registry := newScriptedRegistry(http.StatusInternalServerError)
	server := newTestServer(registry)
	defer server.Close()

	client := fastClient(t, server.URL,
		enquiry.WithDelayPolicy(enquiry.DelayPolicy{Base: time.Hour, ThrottleBase: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Lookup(ctx, "AB12CDE")
	require.Error(t, err)
	assert.Equal(t, enquiry.KindNetwork, enquiry.ErrorKindOf(err))
	assert.Equal(t, 1, int(registry.calls.Load()))
}

func TestLookup_CancelledWhileThrottled(t *testing.T) {
	t.Parallel()

	registry := newScriptedRegistry(http.StatusTooManyRequests)
	server := newTestServer(registry)
	defer server.Close()

	client := fastClient(t, server.URL,
		enquiry.WithDelayPolicy(enquiry.DelayPolicy{Base: time.Hour, ThrottleBase: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Lookup(ctx, "AB12CDE")
	require.Error(t, err)

	var lookupErr *enquiry.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, enquiry.KindThrottled, lookupErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, lookupErr.StatusCode)
	assert.Equal(t, 1, lookupErr.Attempts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLookup_RetryAfterIsCapped(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"registrationNumber":"AB12CDE","motStatus":"Valid","motExpiryDate":"2027-03-01"}`))
	}))
	defer server.Close()

	client := fastClient(t, server.URL,
		enquiry.WithMaxAttempts(3),
		enquiry.WithDelayPolicy(enquiry.DelayPolicy{Base: time.Millisecond, ThrottleBase: 10 * time.Millisecond}))

	start := time.Now()
	result, err := client.Lookup(context.Background(), "AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLookup_EmptyRegistration(t *testing.T) {
	t.Parallel()

	registry := newScriptedRegistry(http.StatusOK)
	server := newTestServer(registry)
	defer server.Close()

	client := fastClient(t, server.URL)
	_, err := client.Lookup(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, enquiry.KindNotFound, enquiry.ErrorKindOf(err))
	assert.Zero(t, registry.calls.Load())
}
