// Package authz authorizes authenticated API callers with Cedar policies
// evaluated against the actions their token scopes grant.
package authz

import "context"

//go:generate mockgen -destination=mocks/mock_authorizer.go -package=mocks -source=authorizer.go Authorizer

// Authorizer decides whether a caller may perform an action
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Decision, error)
}

// Request is one authorization question
type Request struct {
	// GrantedActions come from the caller's scopes through the scope mapping
	GrantedActions []string

	// Action is the action the route requires
	Action string

	// TenantID is the tenant the request targets; empty means all tenants
	TenantID string
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool

	// Reasons lists the IDs of the policies that determined the outcome
	Reasons []string
}
