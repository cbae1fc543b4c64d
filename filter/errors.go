package filter

import (
	"fmt"
	"strings"
)

// CompilationError reports an expression that was rejected before any record
// was seen, either because it is blank or because expr could not compile it.
type CompilationError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *CompilationError) Error() string {
	return describe("invalid filter "+quote(e.Expression), e.Reason, e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError reports a compiled filter that failed on one record,
// such as a division by zero or a helper called with the wrong arguments.
type EvaluationError struct {
	Expression string
	// Record names the record being matched, e.g. "segment s9"
	Record string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	return describe("filter "+quote(e.Expression)+" failed on "+e.Record, e.Reason, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// describe joins the subject, reason and cause into one line, skipping empty parts
func describe(subject, reason string, cause error) string {
	var sb strings.Builder
	sb.WriteString(subject)
	if reason != "" {
		sb.WriteString(": ")
		sb.WriteString(reason)
	}
	if cause != nil {
		sb.WriteString(": ")
		sb.WriteString(cause.Error())
	}
	return sb.String()
}

func quote(expression string) string {
	return fmt.Sprintf("%q", strings.TrimSpace(expression))
}
