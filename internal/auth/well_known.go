package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/goccy/go-json"

	"github.com/mydv/vrsync/internal/config"
)

// protectedResourceMetadata is the RFC 9728 document
type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
}

func newProtectedResourceHandler(resourceURL string, authorizationServers, scopes []string) (http.Handler, error) {
	if resourceURL == "" {
		return nil, errors.New("resourceURL is required")
	}
	if len(authorizationServers) == 0 {
		return nil, errors.New("at least one authorization server is required")
	}
	if len(scopes) == 0 {
		scopes = slices.Clone(config.DefaultScopes)
	}

	data, err := json.Marshal(protectedResourceMetadata{
		Resource:               resourceURL,
		AuthorizationServers:   authorizationServers,
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        scopes,
	})
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			slog.Debug("Failed to write protected resource metadata", "error", err)
		}
	}), nil
}
