package config

import (
	"fmt"
	"net/url"
	"slices"
)

// Auth modes
const (
	// AuthModeAnonymous serves every request without credentials
	AuthModeAnonymous = "anonymous"

	// AuthModeJWT requires a bearer JWT signed by a configured provider
	AuthModeJWT = "jwt"
)

// Authorization actions granted through scopes
const (
	// ActionRead covers statistics and sweep statuses
	ActionRead = "read"

	// ActionSweep covers triggering sweeps
	ActionSweep = "sweep"

	// ActionRefresh covers single-vehicle refreshes
	ActionRefresh = "refresh"
)

// DefaultScopes are the OAuth scopes advertised when none are configured
var DefaultScopes = []string{"vrsync:read", "vrsync:sweep", "vrsync:refresh"}

// DefaultScopeMapping maps the default scopes to actions
func DefaultScopeMapping() []ScopeMappingEntry {
	return []ScopeMappingEntry{
		{Scope: "vrsync:read", Actions: []string{ActionRead}},
		{Scope: "vrsync:sweep", Actions: []string{ActionRead, ActionSweep}},
		{Scope: "vrsync:refresh", Actions: []string{ActionRead, ActionRefresh}},
	}
}

// AuthConfig protects the HTTP API
type AuthConfig struct {
	// Mode is "anonymous" (default) or "jwt"
	Mode string `yaml:"mode,omitempty"`

	// PublicPaths bypass authentication. The health, readiness, version and
	// protected resource metadata endpoints are always public.
	PublicPaths []string `yaml:"publicPaths,omitempty"`

	JWT *JWTAuthConfig `yaml:"jwt,omitempty"`

	// Authorization maps token scopes to actions; without it the default
	// mapping applies
	Authorization *AuthorizationConfig `yaml:"authorization,omitempty"`
}

// JWTAuthConfig lists the token issuers trusted by the API
type JWTAuthConfig struct {
	Providers []JWTProviderConfig `yaml:"providers"`

	// ResourceURL is this API's public URL, advertised through RFC 9728
	// protected resource metadata
	ResourceURL string `yaml:"resourceUrl,omitempty"`

	// Realm is the protection space reported in WWW-Authenticate
	Realm string `yaml:"realm,omitempty"`

	ScopesSupported []string `yaml:"scopesSupported,omitempty"`
}

// JWTProviderConfig is one token issuer. Exactly one of PublicKeyFile and
// SecretFile must be set.
type JWTProviderConfig struct {
	Name     string `yaml:"name"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience,omitempty"`

	// PublicKeyFile is a PEM encoded RSA, ECDSA or Ed25519 public key
	PublicKeyFile string `yaml:"publicKeyFile,omitempty"`

	// SecretFile holds the shared HMAC secret
	SecretFile string `yaml:"secretFile,omitempty"`
}

// AuthorizationConfig configures scope based authorization
type AuthorizationConfig struct {
	ScopeMapping []ScopeMappingEntry `yaml:"scopeMapping,omitempty"`

	// PolicyFile replaces the built-in Cedar policies
	PolicyFile string `yaml:"policyFile,omitempty"`
}

// ScopeMappingEntry grants Actions to tokens carrying Scope
type ScopeMappingEntry struct {
	Scope   string   `yaml:"scope"`
	Actions []string `yaml:"actions"`
}

// GetMode returns the auth mode, defaulting to anonymous. Nil-safe.
func (a *AuthConfig) GetMode() string {
	if a == nil || a.Mode == "" {
		return AuthModeAnonymous
	}
	return a.Mode
}

// GetScopeMapping returns the configured scope mapping or the default one.
// Nil-safe.
func (a *AuthConfig) GetScopeMapping() []ScopeMappingEntry {
	if a == nil || a.Authorization == nil || len(a.Authorization.ScopeMapping) == 0 {
		return DefaultScopeMapping()
	}
	return a.Authorization.ScopeMapping
}

// GetSecret reads the provider's HMAC secret
func (p *JWTProviderConfig) GetSecret() (string, error) {
	secret, err := readSecretFile(p.SecretFile)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", p.SecretFile)
	}
	return secret, nil
}

func (a *AuthConfig) validate() error {
	switch a.GetMode() {
	case AuthModeAnonymous:
		return nil
	case AuthModeJWT:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", AuthModeAnonymous, AuthModeJWT, a.Mode)
	}

	if a.JWT == nil || len(a.JWT.Providers) == 0 {
		return fmt.Errorf("jwt mode requires at least one provider")
	}
	if a.JWT.ResourceURL != "" {
		u, err := url.Parse(a.JWT.ResourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("jwt.resourceUrl must be an absolute URL, got %q", a.JWT.ResourceURL)
		}
	}

	names := make(map[string]bool, len(a.JWT.Providers))
	for i, p := range a.JWT.Providers {
		if p.Name == "" {
			return fmt.Errorf("jwt.providers[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("jwt.providers[%d]: duplicate provider name %q", i, p.Name)
		}
		names[p.Name] = true
		if p.Issuer == "" {
			return fmt.Errorf("jwt.providers[%d]: issuer is required", i)
		}
		if (p.PublicKeyFile == "") == (p.SecretFile == "") {
			return fmt.Errorf("jwt.providers[%d]: exactly one of publicKeyFile and secretFile is required", i)
		}
	}

	known := []string{ActionRead, ActionSweep, ActionRefresh}
	for _, entry := range a.GetScopeMapping() {
		if entry.Scope == "" {
			return fmt.Errorf("authorization: scopeMapping entries need a scope")
		}
		for _, action := range entry.Actions {
			if !slices.Contains(known, action) {
				return fmt.Errorf("authorization: unknown action %q for scope %q", action, entry.Scope)
			}
		}
	}
	return nil
}
