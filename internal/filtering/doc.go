// Package filtering decides which tenants an all-tenant sweep covers.
//
// Tenants are matched against include and exclude glob patterns, with
// exclude taking precedence over include. Patterns use gobwas/glob syntax,
// supporting wildcards like '*', '?', character classes '[...]' and
// alternatives '{a,b}'. Examples:
//
//   - "dealer-*" matches "dealer-1", "dealer-north"
//   - "fleet?" matches "fleet1", "fleet2" but not "fleet10"
//   - "{pilot,beta}-*" matches "pilot-1" and "beta-7"
//
// # Filtering Logic
//
//  1. A tenant matching any exclude pattern is excluded
//  2. With include patterns, a tenant must match at least one of them
//  3. With no include patterns, every tenant not excluded is included
//
// A sweep that names a tenant explicitly is never filtered.
package filtering
