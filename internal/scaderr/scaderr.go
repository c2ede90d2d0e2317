// Package scaderr defines the diagnostic and error-kind taxonomy shared by
// every stage of the kernel pipeline. Nothing in the lexer, parser, or
// evaluator returns a bare Go error for a problem in the SCAD source being
// processed; each stage appends a Diag to its diagnostics list and carries
// on, per the kernel's "never propagate exceptions across the public
// interface" design.
package scaderr

import "fmt"

// Kind is a short tag identifying the category of a diagnostic, matching the
// error taxonomy.
type Kind string

const (
	SyntaxError       Kind = "syntax_error"
	UnknownIdentifier Kind = "unknown_identifier"
	TypeError         Kind = "type_error"
	RecursionLimit    Kind = "recursion_limit"
	KernelError       Kind = "kernel_error"
	ImportError       Kind = "import_error"
	AssertionFailed   Kind = "assertion_failed"
	Timeout           Kind = "timeout"
	ResourceLimit     Kind = "resource_limit"

	// Warning is not part of the error taxonomy proper; it marks a diagnostic
	// that does not affect the job's success flag.
	Warning Kind = "warning"
)

// severe reports whether a Kind counts as an error for HasErrors purposes
// rather than a warning.
func (k Kind) severe() bool {
	return k != Warning
}

// Diag is a single diagnostic produced during parsing or evaluation: a
// human-readable message, an optional source position, and a taxonomy code.
type Diag struct {
	Code    Kind
	Message string
	Line    int
	Column  int

	// Err, if non-nil, is the underlying Go error that caused this
	// diagnostic, for callers that want to unwrap it with errors.Is/As. It
	// plays no part in Diag equality or display.
	Err error
}

// Error implements the error interface so a Diag can be used anywhere a
// plain error is expected (e.g. wrapped by a caller that does need to
// propagate a Go error, such as an I/O failure during import resolution).
func (d Diag) Error() string {
	return d.String()
}

// Unwrap exposes the wrapped error, if any.
func (d Diag) Unwrap() error {
	return d.Err
}

// String renders the diagnostic as "line:col: [code] message", omitting the
// position when it is not known (Line <= 0).
func (d Diag) String() string {
	if d.Line <= 0 {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	if d.Column <= 0 {
		return fmt.Sprintf("%d: [%s] %s", d.Line, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", d.Line, d.Column, d.Code, d.Message)
}

// New builds a Diag with no source position.
func New(code Kind, format string, a ...interface{}) Diag {
	return Diag{Code: code, Message: fmt.Sprintf(format, a...)}
}

// At builds a Diag attributed to the given source position.
func At(code Kind, line, column int, format string, a ...interface{}) Diag {
	return Diag{Code: code, Message: fmt.Sprintf(format, a...), Line: line, Column: column}
}

// Wrap builds a Diag that carries an underlying Go error, typically from an
// I/O failure encountered while resolving an import.
func Wrap(code Kind, err error, format string, a ...interface{}) Diag {
	return Diag{Code: code, Message: fmt.Sprintf(format, a...), Err: err}
}

// Diags is an ordered list of diagnostics accumulated over a parse or
// evaluate job.
type Diags []Diag

// HasErrors reports whether the list contains at least one diagnostic that
// is not a Warning; a job's success flag is true iff HasErrors is false.
func (ds Diags) HasErrors() bool {
	for _, d := range ds {
		if d.Code.severe() {
			return true
		}
	}
	return false
}

// Sort orders the diagnostics by source position (line, then column),
// diagnostics with no position (Line <= 0) sorting first and preserving
// their relative order, per the §6 "sorted by source position when
// available" contract.
func (ds Diags) Sort() {
	// insertion sort: diagnostic lists are small and this keeps the sort
	// stable without pulling in sort.Slice's reflection-based comparator.
	for i := 1; i < len(ds); i++ {
		j := i
		for j > 0 && diagLess(ds[j], ds[j-1]) {
			ds[j], ds[j-1] = ds[j-1], ds[j]
			j--
		}
	}
}

func diagLess(a, b Diag) bool {
	if a.Line <= 0 || b.Line <= 0 {
		return a.Line <= 0 && b.Line > 0
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
