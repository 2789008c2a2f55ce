package filtering

import (
	"fmt"

	"github.com/gobwas/glob"
)

// TenantFilter decides whether a tenant takes part in all-tenant sweeps
type TenantFilter interface {
	// ShouldInclude reports whether tenantID is swept, and why
	ShouldInclude(tenantID string) (bool, string)
}

type compiledPattern struct {
	source string
	glob   glob.Glob
}

// globTenantFilter implements TenantFilter with patterns compiled once
type globTenantFilter struct {
	include []compiledPattern
	exclude []compiledPattern
}

var _ TenantFilter = (*globTenantFilter)(nil)

// NewTenantFilter compiles include and exclude into a TenantFilter. It fails
// on the first invalid pattern.
func NewTenantFilter(include, exclude []string) (TenantFilter, error) {
	inc, err := compilePatterns("include", include)
	if err != nil {
		return nil, err
	}
	exc, err := compilePatterns("exclude", exclude)
	if err != nil {
		return nil, err
	}
	return &globTenantFilter{include: inc, exclude: exc}, nil
}

// ValidatePatterns reports the first pattern that does not compile
func ValidatePatterns(patterns []string) error {
	_, err := compilePatterns("tenant", patterns)
	return err
}

func compilePatterns(kind string, patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern '%s': %w", kind, p, err)
		}
		compiled = append(compiled, compiledPattern{source: p, glob: g})
	}
	return compiled, nil
}

// ShouldInclude implements TenantFilter
func (f *globTenantFilter) ShouldInclude(tenantID string) (bool, string) {
	for _, p := range f.exclude {
		if p.glob.Match(tenantID) {
			return false, fmt.Sprintf("excluded by pattern '%s'", p.source)
		}
	}

	if len(f.include) > 0 {
		for _, p := range f.include {
			if p.glob.Match(tenantID) {
				return true, fmt.Sprintf("included by pattern '%s'", p.source)
			}
		}
		return false, "no match found in include patterns"
	}

	if len(f.exclude) > 0 {
		return true, "no match in exclude patterns"
	}
	return true, "no tenant filters specified"
}
