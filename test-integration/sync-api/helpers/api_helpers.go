// Package helpers provides fixtures for the vrsync integration tests.
package helpers

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/onsi/gomega"
)

// DecodeJSON reads resp, checks its status and decodes the body into T
func DecodeJSON[T any](resp *http.Response, expectedStatus int) T {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(resp.StatusCode).To(gomega.Equal(expectedStatus), "unexpected status, body: %s", string(body))

	var out T
	gomega.Expect(json.Unmarshal(body, &out)).To(gomega.Succeed())
	return out
}
