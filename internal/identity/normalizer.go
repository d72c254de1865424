package identity

import "strings"

// Normalize canonicalizes an entity identifier for cross-entity matching:
// surrounding whitespace is trimmed, internal whitespace runs collapse to a
// single space, and the result is lower-cased. The upstream store is fed by
// hand-entered data, so "  FLT-001 " and "flt-001" must join.
func Normalize(id string) string {
	fields := strings.Fields(id)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
