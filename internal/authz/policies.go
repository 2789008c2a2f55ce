package authz

// defaultPolicies permit an action when the caller's scopes grant it.
// Policies see only principal.grantedActions, so a custom scope mapping
// needs no custom policy.
const defaultPolicies = `
permit(
  principal,
  action == VRSync::Action::"read",
  resource
) when {
  principal.grantedActions.contains("read")
};

permit(
  principal,
  action == VRSync::Action::"sweep",
  resource
) when {
  principal.grantedActions.contains("sweep")
};

permit(
  principal,
  action == VRSync::Action::"refresh",
  resource
) when {
  principal.grantedActions.contains("refresh")
};
`
