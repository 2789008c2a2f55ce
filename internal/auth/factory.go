package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mydv/vrsync/internal/config"
)

// NewAuthMiddleware builds the authentication middleware for cfg. In jwt
// mode with a resource URL it also returns the protected resource metadata
// handler, to be served at WellKnownPath; otherwise that handler is nil.
func NewAuthMiddleware(
	cfg *config.AuthConfig,
	factory ValidatorFactory,
) (func(http.Handler) http.Handler, http.Handler, error) {
	switch mode := cfg.GetMode(); mode {
	case config.AuthModeAnonymous:
		slog.Info("API authentication disabled (anonymous mode)")
		return anonymousMiddleware, nil, nil
	case config.AuthModeJWT:
		return createJWTMiddleware(cfg, factory)
	default:
		return nil, nil, fmt.Errorf("unsupported auth mode: %s", mode)
	}
}

func createJWTMiddleware(
	cfg *config.AuthConfig,
	factory ValidatorFactory,
) (func(http.Handler) http.Handler, http.Handler, error) {
	if cfg.JWT == nil {
		return nil, nil, errors.New("jwt configuration is required for jwt mode")
	}
	if factory == nil {
		factory = DefaultValidatorFactory
	}

	jwtCfg := cfg.JWT
	validators := make([]namedValidator, 0, len(jwtCfg.Providers))
	issuers := make([]string, 0, len(jwtCfg.Providers))
	for _, p := range jwtCfg.Providers {
		v, err := factory(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create validator for provider %q: %w", p.Name, err)
		}
		validators = append(validators, namedValidator{Name: p.Name, Validator: v})
		issuers = append(issuers, p.Issuer)
	}

	m, err := newMultiProviderMiddleware(validators, jwtCfg.ResourceURL, jwtCfg.Realm)
	if err != nil {
		return nil, nil, err
	}

	var metadata http.Handler
	if jwtCfg.ResourceURL != "" {
		metadata, err = newProtectedResourceHandler(jwtCfg.ResourceURL, issuers, jwtCfg.ScopesSupported)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create protected resource handler: %w", err)
		}
	}

	slog.Info("API authentication enabled", "mode", config.AuthModeJWT, "providers", len(validators))
	return m.Middleware, metadata, nil
}

func anonymousMiddleware(next http.Handler) http.Handler {
	return next
}
