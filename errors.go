package simplepg

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrReadOnlyViolation is the cause of every policy rejection.
var ErrReadOnlyViolation = errors.New("only read-only queries are allowed when readOnly is set to true")

// ErrorKind says where in the pipeline an execution failed.
type ErrorKind string

const (
	// KindPolicy means read-only policy rejected the statement before any connection was opened.
	KindPolicy ErrorKind = "policy"
	// KindConnection means the database could not be reached or failed the liveness probe.
	KindConnection ErrorKind = "connection"
	// KindQuery means the database rejected or failed the statement.
	KindQuery ErrorKind = "query"
)

// ExecutionError is returned by Execute for every failure.
type ExecutionError struct {
	Kind    ErrorKind
	Err     error
	Elapsed time.Duration
}

// Error renders the caller-facing message. The cause is capitalized here so
// wrapped Go errors can keep lower-case text.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("Query execution failed: %s (execution time: %dms)", capitalize(e.Err.Error()), e.Elapsed.Milliseconds())
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
