// Package uid validates game account identifiers. Free Fire UIDs are
// all-digit strings of 8 to 12 characters; everything else is rejected
// before it reaches a lookup or a paid action.
package uid

import "regexp"

var pattern = regexp.MustCompile(`^\d{8,12}$`)

// Valid reports whether s is a well-formed UID.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
