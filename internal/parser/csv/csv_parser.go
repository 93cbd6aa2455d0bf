package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tablepipe/internal/parser"
	"tablepipe/internal/records"
)

// Options configures Reader. All fields are optional; sensible defaults are
// applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field.
	LazyQuotes bool

	// HeaderMap maps source header names to schema column names. Unmapped
	// headers are used as-is after trimming.
	HeaderMap map[string]string
}

// Reader parses quoted CSV with encoding/csv. It is safe to reuse across
// inputs, but a single Parse call is not concurrency-safe.
type Reader struct{ opt Options }

// NewReader constructs a Reader with the provided Options.
func NewReader(opt Options) *Reader { return &Reader{opt: opt} }

// Parse follows the Splitter contract for header handling and row width:
// blank lines are skipped, extra cells are ignored, and missing cells are
// left unset. Malformed quoting is a hard error.
func (p *Reader) Parse(text string, onRow func(records.Record) error) error {
	cr := csv.NewReader(strings.NewReader(StripBOM(text)))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	headers := p.normalizeHeaders(h)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv read: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec := make(records.Record, len(headers))
		for i, val := range row {
			if i >= len(headers) {
				break
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = val
		}
		if err := onRow(rec); err != nil {
			return &parser.LineError{Line: line, Err: err}
		}
	}
}

// normalizeHeaders trims each header, strips a BOM from the first cell, and
// applies HeaderMap.
func (p *Reader) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	copy(res, h)
	res = StripHeaderBOM(res)
	for i, col := range res {
		c := strings.TrimSpace(col)
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
