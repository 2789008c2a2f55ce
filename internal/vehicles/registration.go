package vehicles

import (
	"strings"
	"unicode"
)

// NormalizeRegistration strips all whitespace from a plate and upper-cases it.
func NormalizeRegistration(registration string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, registration))
}
