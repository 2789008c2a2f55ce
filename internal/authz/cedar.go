package authz

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	cedar "github.com/cedar-policy/cedar-go"

	"github.com/mydv/vrsync/internal/sync/state"
)

const cedarNamespace = "VRSync"

type cedarAuthorizer struct {
	policySet *cedar.PolicySet
}

// NewCedarAuthorizer parses policies. Nil policies select the built-in set.
func NewCedarAuthorizer(policies []byte) (Authorizer, error) {
	if policies == nil {
		policies = []byte(defaultPolicies)
	}

	ps, err := cedar.NewPolicySetFromBytes("policies.cedar", policies)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cedar policies: %w", err)
	}
	return &cedarAuthorizer{policySet: ps}, nil
}

// NewAuthorizerFromFile loads policies from policyFile, or the built-in set
// when it is empty.
func NewAuthorizerFromFile(policyFile string) (Authorizer, error) {
	if policyFile == "" {
		return NewCedarAuthorizer(nil)
	}
	data, err := os.ReadFile(filepath.Clean(policyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewCedarAuthorizer(data)
}

// Authorize evaluates req. The principal carries grantedActions; the
// resource is the targeted Tenant, "*" for all tenants.
func (a *cedarAuthorizer) Authorize(_ context.Context, req Request) (Decision, error) {
	principal := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Caller"), cedar.String("authenticated"))

	granted := make([]cedar.Value, len(req.GrantedActions))
	for i, action := range req.GrantedActions {
		granted[i] = cedar.String(action)
	}

	tenant := req.TenantID
	if tenant == "" {
		tenant = state.AllTenants
	}
	resource := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Tenant"), cedar.String(tenant))

	entities := cedar.EntityMap{
		principal: cedar.Entity{
			UID: principal,
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"grantedActions": cedar.NewSet(granted...),
			}),
		},
	}

	decision, diagnostic := cedar.Authorize(a.policySet, entities, cedar.Request{
		Principal: principal,
		Action:    cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Action"), cedar.String(req.Action)),
		Resource:  resource,
		Context:   cedar.NewRecord(cedar.RecordMap{}),
	})
	if len(diagnostic.Errors) > 0 {
		slog.Warn("Cedar policy evaluation reported errors", "action", req.Action, "errors", len(diagnostic.Errors))
	}

	reasons := make([]string, 0, len(diagnostic.Reasons))
	for _, r := range diagnostic.Reasons {
		reasons = append(reasons, string(r.PolicyID))
	}

	return Decision{Allowed: decision == cedar.Allow, Reasons: reasons}, nil
}
