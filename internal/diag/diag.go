// Package diag centralises the fatal-error reporting shared by the
// parser, code generator, and compiler pipeline. The lexer reports
// problems as UNKNOWN tokens instead.
//
// Every stage returns an `error` rather than panicking or calling
// os.Exit directly; only the CLI driver (cmd/compilec) decides how to
// print a diag.Error and what exit code to use.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a diagnostic tied to a source line, produced by the parser,
// code generator, or compiler pipeline.
type Error struct {
	// Line is the 1-based source line the error was detected at, or 0
	// if the error is not tied to a specific line (e.g. an I/O failure).
	Line int
	// Stage names the pipeline component that raised the error
	// ("parser", "codegen", "compiler").
	Stage string
	// Message is the human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Stage, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Fatalf builds a line-annotated *Error for stage.
func Fatalf(stage string, line int, format string, args ...any) error {
	return &Error{Stage: stage, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches stage-level context to a lower-level cause (the
// compiler uses it for parser errors) while preserving the cause
// chain for %+v-style stack traces.
func Wrap(cause error, stage, format string, args ...any) error {
	return errors.Wrapf(cause, "%s: %s", stage, fmt.Sprintf(format, args...))
}
