// Package json implements a parser for newline-delimited JSON objects:
//
//	{"city":"Lagos","density":13712}
//	{"city":"Tokyo","density":6168}
//
// With AllowArrays a single top-level array of objects is accepted too.
// Scalar values become their textual form so the normalizer sees the same
// raw strings a delimited file would carry; null becomes "".
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tablepipe/internal/parser"
	"tablepipe/internal/records"
)

// Parser decodes JSON objects into records. It is safe for concurrent use.
type Parser struct {
	AllowArrays bool
}

// Parse emits one record per object, in input order. Line numbers in
// returned errors refer to the line where the object ends.
func (p Parser) Parse(text string, onRow func(records.Record) error) error {
	text = strings.TrimPrefix(text, "\uFEFF")
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	lineAt := func() int { return 1 + strings.Count(text[:dec.InputOffset()], "\n") }

	emit := func(obj map[string]any) error {
		rec, err := toRecord(obj)
		if err == nil {
			err = onRow(rec)
		}
		if err != nil {
			return &parser.LineError{Line: lineAt(), Err: err}
		}
		return nil
	}

	if strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "[") {
		if !p.AllowArrays {
			return fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("json parser: %w", err)
		}
		for dec.More() {
			var obj map[string]any
			if err := dec.Decode(&obj); err != nil {
				return fmt.Errorf("json parser: line %d: %w", lineAt(), err)
			}
			if err := emit(obj); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("json parser: %w", err)
		}
		return nil
	}

	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("json parser: line %d: %w", lineAt(), err)
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("json parser: line %d: top-level %T is not an object", lineAt(), raw)
		}
		if err := emit(obj); err != nil {
			return err
		}
	}
}

func toRecord(obj map[string]any) (records.Record, error) {
	rec := make(records.Record, len(obj))
	for k, v := range obj {
		s, err := rawValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec[k] = s
	}
	return rec, nil
}

// rawValue renders nested objects and arrays as compact JSON.
func rawValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
