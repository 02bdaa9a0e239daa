// Package isbn normalizes ISBN strings so catalog lookups treat
// "1", "01" and "001" as the same book.
package isbn

import "strings"

// Normalize strips leading zeros (a lone "0" survives) and lower-cases.
// The normalized form is the identity key for every catalog lookup and
// uniqueness check.
func Normalize(raw string) string {
	s := raw
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return strings.ToLower(s)
}

// Equal reports whether two raw ISBNs refer to the same book.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
