// Package parser defines the ingestion strategy used by a table. A Parser
// turns raw text into header-keyed records and pushes them, in input order,
// to a callback; it never materializes the full record set itself.
package parser

import (
	"fmt"

	"tablepipe/internal/records"
)

// Parser splits text into raw records. onRow is invoked synchronously for
// each record in input order; a non-nil error from onRow stops the parse and
// is returned to the caller.
type Parser interface {
	Parse(text string, onRow func(records.Record) error) error
}

// Func adapts an ordinary function to the Parser interface.
type Func func(text string, onRow func(records.Record) error) error

// Parse calls f(text, onRow).
func (f Func) Parse(text string, onRow func(records.Record) error) error { return f(text, onRow) }

// Collect runs p over text and returns every record it emits.
func Collect(p Parser, text string) ([]records.Record, error) {
	var out []records.Record
	err := p.Parse(text, func(r records.Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// LineError attaches the 1-based input line to an error returned by onRow.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }
