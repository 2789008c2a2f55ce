package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicPath(t *testing.T) {
	t.Parallel()

	public := []string{"/health", "/readiness", "/metrics"}

	tests := []struct {
		name        string
		path        string
		publicPaths []string
		want        bool
	}{
		{"exact match", "/health", public, true},
		{"sub-segment", "/metrics/extra", public, true},
		{"protected route", "/v1/stats", public, false},
		{"nil public paths", "/health", nil, false},
		{"traversal out of public path", "/health/../v1/sweeps", public, false},
		{"traversal within public path", "/metrics/a/../b", public, true},
		{"encoded separator", "/health/..%2fv1/stats", public, false},
		{"encoded dot", "/health/%2e%2e/v1/stats", public, false},
		{"prefix without boundary", "/healthz", public, false},
		{"trailing slash", "/readiness/", public, true},
		{"double slash", "//health", public, true},
		{"case sensitive", "/Health", public, false},
		{"root makes everything public", "/v1/sweeps", []string{"/"}, true},
		{"relative public path", "/health", []string{"health"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPublicPath(tt.path, tt.publicPaths))
		})
	}
}

func TestPublicPaths(t *testing.T) {
	t.Parallel()

	got := PublicPaths("/metrics", "/health", "")
	assert.Equal(t, []string{"/health", "/readiness", "/version", WellKnownPath, "/metrics"}, got)
	assert.Len(t, alwaysPublicPaths, 4)
}
