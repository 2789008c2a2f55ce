package authz

import (
	"net/http"
	"strings"

	"github.com/mydv/vrsync/internal/config"
)

// ActionUnmapped is required by routes no scope can grant
const ActionUnmapped = "unmapped"

// RouteAction returns the action a request needs
func RouteAction(method, path string) string {
	path = strings.TrimSuffix(path, "/")
	switch {
	case method == http.MethodPost && path == "/v1/sweeps":
		return config.ActionSweep
	case method == http.MethodPost && isVehicleRefresh(path):
		return config.ActionRefresh
	case method == http.MethodGet, method == http.MethodHead:
		return config.ActionRead
	}
	return ActionUnmapped
}

// isVehicleRefresh matches /v1/vehicles/{id}/refresh
func isVehicleRefresh(path string) bool {
	rest, ok := strings.CutPrefix(path, "/v1/vehicles/")
	if !ok {
		return false
	}
	id, ok := strings.CutSuffix(rest, "/refresh")
	return ok && id != "" && !strings.Contains(id, "/")
}
