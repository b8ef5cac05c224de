// Package classify decides whether a SQL statement may run under read-only policy.
//
// The check is textual: the statement is trimmed and upper-cased, then matched
// against a fixed allow-list of leading keywords and a deny-list of substrings.
// Keywords inside string literals, comments, or identifiers are not told apart
// from real ones, so the check errs toward rejecting statements.
package classify

import "strings"

// readOnlyPrefixes are the leading keywords a read-only statement may start with.
var readOnlyPrefixes = []string{
	"SELECT",
	"EXPLAIN",
	"SHOW",
	"WITH", // CTE
	"ANALYZE",
	"DESCRIBE",
}

// disqualifiers reject statements that start read-only but write or lock rows.
var disqualifiers = []string{
	"INTO", // SELECT ... INTO creates a table
	"FOR UPDATE",
	"FOR SHARE",
}

// IsReadOnly reports whether sql is allowed when read-only policy is in effect.
// Empty and whitespace-only statements are not read-only.
func IsReadOnly(sql string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(sql))

	allowed := false
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, word := range disqualifiers {
		if strings.Contains(normalized, word) {
			return false
		}
	}
	return true
}
