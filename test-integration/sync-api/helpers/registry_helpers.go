package helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/goccy/go-json"
)

// RegistryAnswer is the scripted reply of the fake registry for one
// registration
type RegistryAnswer struct {
	Status int
	Facts  map[string]any
}

// FakeRegistry is an httptest server that answers lookups from a script
// keyed by registration number. Unknown registrations get a 404.
type FakeRegistry struct {
	*httptest.Server

	mu      sync.Mutex
	answers map[string]RegistryAnswer
	calls   map[string]int
	apiKey  string
}

// NewFakeRegistry starts a fake registry that requires apiKey
func NewFakeRegistry(apiKey string) *FakeRegistry {
	r := &FakeRegistry{
		answers: map[string]RegistryAnswer{},
		calls:   map[string]int{},
		apiKey:  apiKey,
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	return r
}

// WithValid scripts a successful answer with the given roadworthiness status
// and expiry date
func (r *FakeRegistry) WithValid(registration, status, expiry string) *FakeRegistry {
	return r.With(registration, RegistryAnswer{
		Status: http.StatusOK,
		Facts: map[string]any{
			"registrationNumber": registration,
			"make":               "FORD",
			"colour":             "BLUE",
			"motStatus":          status,
			"motExpiryDate":      expiry,
		},
	})
}

// With scripts an arbitrary answer for registration
func (r *FakeRegistry) With(registration string, answer RegistryAnswer) *FakeRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers[registration] = answer
	return r
}

// Calls returns how many lookups were made for registration
func (r *FakeRegistry) Calls(registration string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[registration]
}

// TotalCalls returns the number of lookups made for every registration
func (r *FakeRegistry) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int
	for _, n := range r.calls {
		total += n
	}
	return total
}

func (r *FakeRegistry) serve(w http.ResponseWriter, req *http.Request) {
	if req.Header.Get("x-api-key") != r.apiKey {
		writeRegistryError(w, http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeRegistryError(w, http.StatusBadRequest)
		return
	}
	var lookup struct {
		RegistrationNumber string `json:"registrationNumber"`
	}
	if err := json.Unmarshal(body, &lookup); err != nil {
		writeRegistryError(w, http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	r.calls[lookup.RegistrationNumber]++
	answer, ok := r.answers[lookup.RegistrationNumber]
	r.mu.Unlock()

	if !ok {
		writeRegistryError(w, http.StatusNotFound)
		return
	}
	if answer.Status != http.StatusOK {
		writeRegistryError(w, answer.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(answer.Facts)
}

func writeRegistryError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"errors":[{"status":"%d","title":"%s"}]}`, status, http.StatusText(status))
}
