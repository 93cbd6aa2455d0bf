package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue reports a cell that cannot be converted to its column type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrNotImplemented reports a column type or aggregate the pipeline does not know.
	ErrNotImplemented = errors.New("not implemented")
)

// ValueError describes a single cell that failed conversion. Line is the
// 1-based input line when known, 0 otherwise.
type ValueError struct {
	Column string
	Value  any
	Line   int
}

func (e *ValueError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid value %q for column %q at line %d", fmt.Sprint(e.Value), e.Column, e.Line)
	}
	return fmt.Sprintf("invalid value %q for column %q", fmt.Sprint(e.Value), e.Column)
}

func (e *ValueError) Unwrap() error { return ErrInvalidValue }

// UnsupportedError names an unknown column type or aggregate.
type UnsupportedError struct {
	Kind string // "type" or "aggregate"
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s %q: not implemented", e.Kind, e.Name)
}

func (e *UnsupportedError) Unwrap() error { return ErrNotImplemented }
