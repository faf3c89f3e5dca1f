// Package simerr defines the error kinds reported while parsing and running a circuit.
//
// Every failure is deterministic for a given input, so nothing here is retried: callers
// surface the error and abort the run. Use errors.As to tell the kinds apart.
package simerr

import "fmt"

// ParseError reports malformed circuit text.
type ParseError struct {
	Line int    // 1-based source line, 0 if unknown
	Text string // offending statement
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
	}
	return fmt.Sprintf("parse: %s: %q", e.Msg, e.Text)
}

// UnknownGateError reports a gate name that is not part of the gate library.
type UnknownGateError struct {
	Name string
	Line int
}

func (e *UnknownGateError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unknown gate %q", e.Line, e.Name)
	}
	return fmt.Sprintf("unknown gate %q", e.Name)
}

// DimensionError reports a qubit or classical bit index that does not fit the
// declared registers, or a multi-qubit gate whose operands coincide.
type DimensionError struct {
	Line int
	Msg  string
}

func (e *DimensionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Dimensionf builds a DimensionError without a source line.
func Dimensionf(format string, args ...any) *DimensionError {
	return &DimensionError{Msg: fmt.Sprintf(format, args...)}
}

// NormalizationError means the state vector drifted away from unit norm.
// It indicates an internal inconsistency (or non-finite gate parameters) and is fatal.
type NormalizationError struct {
	Norm float64
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("state vector norm %g is not 1", e.Norm)
}
