// Package compute evaluates computed columns. It runs strictly after every
// row has been folded into the metrics, because calculations may read any
// metric's final value.
package compute

import (
	"fmt"
	"maps"
	"math"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// Populate sets every computed column of every row. Within a row, columns
// are evaluated in declaration order, so a computed column may read the value
// of an earlier one. Calculations receive a private copy of m.
func Populate(rows []records.Record, columns []schema.ColumnSpec, m schema.Metrics) error {
	var computed []schema.ColumnSpec
	for _, c := range columns {
		if c.Calculate != nil {
			computed = append(computed, c)
		}
	}
	if len(computed) == 0 || len(rows) == 0 {
		return nil
	}

	frozen := maps.Clone(m)
	for i, row := range rows {
		for _, c := range computed {
			v, err := c.Calculate(row, frozen)
			if err != nil {
				return fmt.Errorf("row %d: column %q: %w", i, c.Name, err)
			}
			out, ok := coerce(c.Type, v)
			if !ok {
				return fmt.Errorf("row %d: %w", i, &schema.ValueError{Column: c.Name, Value: v})
			}
			row[c.Name] = out
		}
	}
	return nil
}

// coerce checks a calculated value against the column type. Number columns
// accept any Go number and store float64.
func coerce(typ schema.ColumnType, v any) (any, bool) {
	switch typ {
	case schema.TypeNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
	case schema.TypeString:
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return nil, false
}

// RoundHalfUp rounds x to the nearest integer, with halves rounded toward
// positive infinity.
func RoundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
