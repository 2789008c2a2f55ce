package authz

import (
	"slices"
	"strings"

	"github.com/mydv/vrsync/internal/config"
)

// ExtractScopes reads the space separated "scope" claim (RFC 6749) or,
// failing that, the "scp" array some providers issue.
func ExtractScopes(claims map[string]any) []string {
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		return strings.Fields(scope)
	}

	scp, ok := claims["scp"].([]any)
	if !ok {
		return nil
	}
	scopes := make([]string, 0, len(scp))
	for _, s := range scp {
		if str, ok := s.(string); ok {
			scopes = append(scopes, str)
		}
	}
	return scopes
}

// MapScopesToActions returns the sorted actions granted by scopes
func MapScopesToActions(scopes []string, mapping []config.ScopeMappingEntry) []string {
	var actions []string
	for _, entry := range mapping {
		if !slices.Contains(scopes, entry.Scope) {
			continue
		}
		for _, action := range entry.Actions {
			if !slices.Contains(actions, action) {
				actions = append(actions, action)
			}
		}
	}
	slices.Sort(actions)
	return actions
}
