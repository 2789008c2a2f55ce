// Package auth authenticates requests to the vrsync API with bearer JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

var errAllProvidersFailed = errors.New("no provider accepted the token")

// RFC 6750 section 3 error codes
const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeInvalidToken   = "invalid_token"
)

const defaultRealm = "vrsync"

type providerError struct {
	Provider string
	Error    error
}

type validationResult struct {
	Provider string
	Claims   jwt.MapClaims
	Error    error
	Errors   []providerError
}

type namedValidator struct {
	Name      string
	Validator TokenValidator
}

// multiProviderMiddleware tries each provider in configuration order and
// accepts the first that validates the token.
type multiProviderMiddleware struct {
	validators  []namedValidator
	resourceURL string
	realm       string
}

func newMultiProviderMiddleware(validators []namedValidator, resourceURL, realm string) (*multiProviderMiddleware, error) {
	if len(validators) == 0 {
		return nil, errors.New("at least one provider must be configured")
	}
	if realm == "" {
		realm = defaultRealm
	}
	return &multiProviderMiddleware{
		validators:  validators,
		resourceURL: strings.TrimSuffix(resourceURL, "/"),
		realm:       realm,
	}, nil
}

// Middleware rejects requests without a valid token and stores the
// caller's Identity in the request context.
func (m *multiProviderMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			slog.Warn("Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		result := m.validateToken(r.Context(), token)
		if result.Error != nil {
			slog.Warn("Token validation failed",
				"error", result.Error,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, errorCodeInvalidToken, "token validation failed")
			return
		}

		subject, _ := result.Claims.GetSubject()
		slog.Debug("Authentication successful",
			"provider", result.Provider,
			"subject", subject,
			"path", r.URL.Path)

		ctx := WithIdentity(r.Context(), &Identity{
			Subject:  subject,
			Provider: result.Provider,
			Claims:   result.Claims,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *multiProviderMiddleware) validateToken(ctx context.Context, token string) validationResult {
	failures := make([]providerError, 0, len(m.validators))

	for _, nv := range m.validators {
		claims, err := nv.Validator.ValidateToken(ctx, token)
		if err != nil {
			failures = append(failures, providerError{Provider: nv.Name, Error: err})
			slog.Debug("Provider rejected token", "provider", nv.Name, "error", err)
			continue
		}
		return validationResult{Provider: nv.Name, Claims: claims, Errors: failures}
	}

	errs := make([]error, 0, len(failures)+1)
	errs = append(errs, errAllProvidersFailed)
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Provider, f.Error))
	}
	return validationResult{Error: errors.Join(errs...), Errors: failures}
}

// sanitizeHeaderValue strips CR and LF and escapes quotes for use in a
// quoted-string.
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeError answers 401 with an RFC 6750 WWW-Authenticate challenge
func (m *multiProviderMiddleware) writeError(w http.ResponseWriter, errCode, description string) {
	challenge := fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description))
	if m.resourceURL != "" {
		challenge += fmt.Sprintf(`, resource_metadata="%s%s"`, sanitizeHeaderValue(m.resourceURL), WellKnownPath)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", challenge)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": description}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// WrapWithPublicPaths applies authMw to every request whose path is not
// public. Public requests go straight to next.
func WrapWithPublicPaths(authMw func(http.Handler) http.Handler, publicPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}
