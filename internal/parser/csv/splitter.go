// Package csv implements the ingestion strategies for delimited text.
//
// Splitter is the default: a plain delimiter splitter with no quoting or
// escaping, where a comma inside a value always splits it. Reader is the
// alternate strategy built on encoding/csv for inputs that quote fields.
// Both emit header-keyed records through a push callback, line by line.
package csv

import (
	"strings"

	"tablepipe/internal/parser"
	"tablepipe/internal/records"
)

// Splitter splits text on line breaks and each line on Comma. The first line
// is the header. It is safe for concurrent use.
type Splitter struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune
}

// Default is the parser used by tables that are not given one.
var Default parser.Parser = Splitter{}

// Parse emits one record per non-empty data line. A trailing carriage return
// is dropped from every line first, so a line holding only "\r" counts as
// empty and is skipped. Input with fewer than two lines emits nothing. Header names are trimmed and stripped of a leading
// byte-order marker; cell values are passed through untouched. Cells beyond
// the header are ignored and header fields without a cell are left unset.
func (s Splitter) Parse(text string, onRow func(records.Record) error) error {
	sep := ","
	if s.Comma != 0 {
		sep = string(s.Comma)
	}

	header, rest, ok := strings.Cut(StripBOM(text), "\n")
	if !ok {
		return nil
	}
	names := strings.Split(trimCR(header), sep)
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}

	line := 1
	for rest != "" {
		var raw string
		raw, rest, _ = strings.Cut(rest, "\n")
		line++
		raw = trimCR(raw)
		if raw == "" {
			continue
		}

		rec := make(records.Record, len(names))
		for _, name := range names {
			cell, tail, more := strings.Cut(raw, sep)
			rec[name] = cell
			if !more {
				break
			}
			raw = tail
		}
		if err := onRow(rec); err != nil {
			return &parser.LineError{Line: line, Err: err}
		}
	}
	return nil
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
