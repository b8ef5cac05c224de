// Package logsql prepares SQL text for log output.
package logsql

import (
	"unicode/utf8"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// DefaultMaxLen is the longest statement text written to a log line.
const DefaultMaxLen = 200

// Redact replaces literal constants in sql with $n placeholders so values
// typed into a query do not end up in logs. SQL that does not parse is
// returned truncated but otherwise unchanged.
func Redact(sql string, maxLen int) string {
	normalized, err := pg_query.Normalize(sql)
	if err != nil {
		return Truncate(sql, maxLen)
	}
	return Truncate(normalized, maxLen)
}

// Truncate cuts s to at most maxLen bytes on a rune boundary.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...[truncated]"
}
