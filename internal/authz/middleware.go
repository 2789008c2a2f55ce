package authz

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/mydv/vrsync/internal/api/common"
	"github.com/mydv/vrsync/internal/auth"
	"github.com/mydv/vrsync/internal/config"
)

// ForbiddenResponse is the 403 body
type ForbiddenResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Details *ForbiddenDetail `json:"details,omitempty"`
}

// ForbiddenDetail tells the caller which action was needed and which
// scopes would grant it.
type ForbiddenDetail struct {
	RequiredAction string   `json:"requiredAction"`
	CallerScopes   []string `json:"callerScopes"`
	Hint           string   `json:"hint"`
}

// Middleware authorizes requests carrying an auth.Identity. Requests
// without one reached a public path or run in anonymous mode and pass
// through unchecked.
func Middleware(authorizer Authorizer, scopeMapping []config.ScopeMappingEntry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			scopes := ExtractScopes(identity.Claims)
			req := Request{
				GrantedActions: MapScopesToActions(scopes, scopeMapping),
				Action:         RouteAction(r.Method, r.URL.Path),
				TenantID:       strings.TrimSpace(r.URL.Query().Get("tenantId")),
			}

			decision, err := authorizer.Authorize(r.Context(), req)
			if err != nil {
				slog.Error("Authorization evaluation failed",
					"error", err,
					"action", req.Action,
					"path", r.URL.Path,
					"subject", identity.Subject)
				common.WriteErrorResponse(w, "authorization evaluation failed", http.StatusInternalServerError)
				return
			}

			if !decision.Allowed {
				slog.Warn("Authorization denied",
					"action", req.Action,
					"method", r.Method,
					"path", r.URL.Path,
					"subject", identity.Subject,
					"granted_actions", req.GrantedActions)
				common.WriteJSONResponse(w, ForbiddenResponse{
					Error:   "forbidden",
					Message: "You do not have permission to perform this action.",
					Details: &ForbiddenDetail{
						RequiredAction: req.Action,
						CallerScopes:   scopes,
						Hint:           buildHint(req.Action, scopeMapping),
					},
				}, http.StatusForbidden)
				return
			}

			slog.Debug("Authorization permitted",
				"action", req.Action,
				"path", r.URL.Path,
				"subject", identity.Subject,
				"reasons", decision.Reasons)
			next.ServeHTTP(w, r)
		})
	}
}

func buildHint(requiredAction string, scopeMapping []config.ScopeMappingEntry) string {
	var granting []string
	for _, entry := range scopeMapping {
		if slices.Contains(entry.Actions, requiredAction) {
			granting = append(granting, entry.Scope)
		}
	}
	if len(granting) == 0 {
		return "No configured scope grants the required action."
	}
	return "This operation requires one of the following scopes: " + strings.Join(granting, ", ")
}
