// Package validators provides validation functions for identifiers accepted
// from API callers and the command line.
package validators

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTenantIDLength = 64

// tenantIDPattern must start and end with alphanumeric, can contain dots,
// underscores and hyphens in the middle
var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// ValidateTenantID validates a tenant ID and returns it trimmed.
//
// Examples of valid IDs:
//   - dealer-1
//   - fleet.north_2
//
// Examples of invalid IDs:
//   - -dealer (starts with a dash)
//   - dealer 1 (contains a space)
//   - * (reserved for all-tenant sweeps)
func ValidateTenantID(id string) (string, error) {
	id = strings.TrimSpace(id)

	if id == "" {
		return "", fmt.Errorf("tenant ID cannot be empty")
	}
	if len(id) > maxTenantIDLength {
		return "", fmt.Errorf("tenant ID exceeds maximum length of %d characters", maxTenantIDLength)
	}
	if !tenantIDPattern.MatchString(id) {
		return "", fmt.Errorf(
			"tenant ID '%s' is invalid. It must start and end with alphanumeric characters, "+
				"and may contain dots, underscores, and hyphens in the middle",
			id,
		)
	}

	return id, nil
}

// ValidateOptionalTenantID is ValidateTenantID for filters where an empty ID
// means every tenant
func ValidateOptionalTenantID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", nil
	}
	return ValidateTenantID(id)
}
