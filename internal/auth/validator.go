package auth

//go:generate mockgen -destination=mocks/mock_validator.go -package=mocks -source=validator.go TokenValidator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mydv/vrsync/internal/config"
)

// clockSkew is tolerated on exp, nbf and iat
const clockSkew = 30 * time.Second

var (
	hmacMethods    = []string{"HS256", "HS384", "HS512"}
	rsaMethods     = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	ecdsaMethods   = []string{"ES256", "ES384", "ES512"}
	ed25519Methods = []string{"EdDSA"}
)

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (jwt.MapClaims, error)
}

// ValidatorFactory builds the validator of one provider
type ValidatorFactory func(cfg config.JWTProviderConfig) (TokenValidator, error)

// DefaultValidatorFactory verifies tokens locally with the provider's key
var DefaultValidatorFactory ValidatorFactory = NewJWTValidator

type jwtValidator struct {
	parser *jwt.Parser
	key    any
}

// NewJWTValidator creates a validator that accepts tokens signed with the
// provider's key, issued by its issuer and, when set, addressed to its
// audience. Tokens without an expiry are rejected.
func NewJWTValidator(cfg config.JWTProviderConfig) (TokenValidator, error) {
	key, methods, err := loadVerificationKey(cfg)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &jwtValidator{parser: jwt.NewParser(opts...), key: key}, nil
}

func (v *jwtValidator) ValidateToken(_ context.Context, token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func loadVerificationKey(cfg config.JWTProviderConfig) (any, []string, error) {
	if cfg.SecretFile != "" {
		secret, err := cfg.GetSecret()
		if err != nil {
			return nil, nil, err
		}
		return []byte(secret), hmacMethods, nil
	}

	if cfg.PublicKeyFile == "" {
		return nil, nil, errors.New("provider needs a publicKeyFile or a secretFile")
	}
	data, err := os.ReadFile(filepath.Clean(cfg.PublicKeyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key: %w", err)
	}

	if key, err := jwt.ParseRSAPublicKeyFromPEM(data); err == nil {
		return key, rsaMethods, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(data); err == nil {
		return key, ecdsaMethods, nil
	}
	if key, err := jwt.ParseEdPublicKeyFromPEM(data); err == nil {
		return key, ed25519Methods, nil
	}
	return nil, nil, fmt.Errorf("%s holds no PEM encoded RSA, ECDSA or Ed25519 public key", cfg.PublicKeyFile)
}

var (
	errMissingAuthHeader = errors.New("authorization header missing")
	errNotBearer         = errors.New("authorization header is not a bearer token")
	errEmptyToken        = errors.New("bearer token is empty")
)

// extractBearerToken reads the RFC 6750 bearer token from the Authorization header
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errNotBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}
