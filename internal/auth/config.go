package auth

import (
	"path"
	"slices"
	"strings"
)

// WellKnownPath serves RFC 9728 protected resource metadata
const WellKnownPath = "/.well-known/oauth-protected-resource"

// alwaysPublicPaths never require a token
var alwaysPublicPaths = []string{"/health", "/readiness", "/version", WellKnownPath}

// PublicPaths merges the configured public paths with the probe and
// metadata endpoints.
func PublicPaths(configured ...string) []string {
	out := slices.Clone(alwaysPublicPaths)
	for _, p := range configured {
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// IsPublicPath reports whether requestPath bypasses authentication.
//
// Encoded separators are rejected outright. The path is cleaned before
// matching and a public path only covers itself and its sub-segments, so
// /health matches /health/live but not /healthz or /health/../v1/stats.
func IsPublicPath(requestPath string, publicPaths []string) bool {
	lower := strings.ToLower(requestPath)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%2e") {
		return false
	}

	cleaned := rooted(requestPath)
	for _, p := range publicPaths {
		public := rooted(p)
		switch {
		case public == "/":
			return true
		case cleaned == public, strings.HasPrefix(cleaned, public+"/"):
			return true
		}
	}
	return false
}

func rooted(p string) string {
	c := path.Clean(p)
	if !strings.HasPrefix(c, "/") {
		c = "/" + c
	}
	return c
}
