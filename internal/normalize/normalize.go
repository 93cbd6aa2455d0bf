// Package normalize converts raw header-keyed records into typed rows.
//
// A Plan is compiled once per schema: every column gets its default value and
// a converter up front, so the per-row loop does no type lookups and unknown
// column types are reported before the first row is read.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

type converter func(v any) (any, bool)

var converters = map[schema.ColumnType]converter{
	schema.TypeString: toString,
	schema.TypeNumber: toNumber,
}

type colPlan struct {
	name     string
	def      any
	computed bool
	conv     converter
}

// Plan holds the per-column conversion steps for one schema.
type Plan struct {
	cols []colPlan
}

// Compile builds a Plan for columns. An unknown column type fails with an
// error wrapping schema.ErrNotImplemented.
func Compile(columns []schema.ColumnSpec) (*Plan, error) {
	p := &Plan{cols: make([]colPlan, len(columns))}
	for i, c := range columns {
		def, err := schema.DefaultValue(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		p.cols[i] = colPlan{
			name:     c.Name,
			def:      def,
			computed: c.Computed(),
			conv:     converters[c.Type],
		}
	}
	return p, nil
}

// Row converts raw into a new row holding one value per declared column.
// Absent fields take the type default; computed columns get the default as a
// placeholder until their value is calculated. A value that cannot be
// converted fails with a *schema.ValueError.
func (p *Plan) Row(raw records.Record) (records.Record, error) {
	row := make(records.Record, len(p.cols))
	for i := range p.cols {
		c := &p.cols[i]
		v, ok := raw[c.name]
		if c.computed || !ok || v == nil {
			row[c.name] = c.def
			continue
		}
		out, ok := c.conv(v)
		if !ok {
			return nil, &schema.ValueError{Column: c.name, Value: v}
		}
		row[c.name] = out
	}
	return row, nil
}

// Row is a one-shot Compile followed by Plan.Row.
func Row(raw records.Record, columns []schema.ColumnSpec) (records.Record, error) {
	p, err := Compile(columns)
	if err != nil {
		return nil, err
	}
	return p.Row(raw)
}

// Value converts a single value to typ.
func Value(v any, typ schema.ColumnType) (any, error) {
	conv, ok := converters[typ]
	if !ok {
		return nil, &schema.UnsupportedError{Kind: "type", Name: string(typ)}
	}
	out, ok := conv(v)
	if !ok {
		return nil, &schema.ValueError{Value: v}
	}
	return out, nil
}

func toString(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return strings.TrimSpace(s), true
}

// toNumber accepts numbers as-is and parses strings after trimming. An empty
// string is 0. NaN and infinities are rejected.
func toNumber(v any) (any, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return float64(0), true
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}
