// Package schema describes the shape of a table: its ordered columns, the
// scalar metrics folded over all rows, and the optional sort order of the
// final result set.
//
// A schema is plain data plus optional Go callbacks for computed columns. It
// can be declared in code (see package reference) or decoded from a pipeline
// file (see package config), where computed columns are written as
// expressions and bound to callbacks at load time.
package schema

import (
	"tablepipe/internal/records"
)

// ColumnType names the value type of a column or metric.
type ColumnType string

const (
	// TypeString columns hold trimmed text; the zero value is "".
	TypeString ColumnType = "string"
	// TypeNumber columns hold finite float64 values; the zero value is 0.
	TypeNumber ColumnType = "number"
)

// Metrics maps a metric name to its current or final scalar value.
type Metrics map[string]any

// CalculateFunc derives a computed column from a normalized row and the final
// metrics. It must be a pure function of its inputs.
type CalculateFunc func(row records.Record, m Metrics) (any, error)

// ColumnSpec declares a single column.
type ColumnSpec struct {
	Name  string     `json:"name" yaml:"name"`
	Type  ColumnType `json:"type" yaml:"type"`
	Width int        `json:"width,omitempty" yaml:"width,omitempty"`
	// Align is "left" or "right"; empty uses the formatter default.
	Align string `json:"align,omitempty" yaml:"align,omitempty"`

	// Expr is a calculation over row fields and metric names, compiled into
	// Calculate when the schema is loaded from a file.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	Calculate CalculateFunc `json:"-" yaml:"-"`
}

// Computed reports whether the column is derived rather than parsed.
func (c ColumnSpec) Computed() bool { return c.Calculate != nil || c.Expr != "" }

// MetricSpec declares a scalar folded over one source column.
type MetricSpec struct {
	Name      string     `json:"name" yaml:"name"`
	Type      ColumnType `json:"type" yaml:"type"`
	From      string     `json:"from" yaml:"from"`
	Aggregate string     `json:"aggregate" yaml:"aggregate"`
}

// SortBy orders the final rows by one numeric column. Order "asc" sorts
// ascending; anything else, including "", sorts descending.
type SortBy struct {
	Column string `json:"column" yaml:"column"`
	Order  string `json:"order,omitempty" yaml:"order,omitempty"`
}

// Ascending reports whether s sorts in ascending order.
func (s SortBy) Ascending() bool { return s.Order == "asc" }

// Schema is the full table declaration.
type Schema struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
	Metrics []MetricSpec `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	SortBy  *SortBy      `json:"sort_by,omitempty" yaml:"sort_by,omitempty"`
}

// Column returns the column named name.
func (s *Schema) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// ColumnNames returns the declared column names in order.
func (s *Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// DefaultValue returns the zero value of typ.
func DefaultValue(typ ColumnType) (any, error) {
	switch typ {
	case TypeString:
		return "", nil
	case TypeNumber:
		return float64(0), nil
	default:
		return nil, &UnsupportedError{Kind: "type", Name: string(typ)}
	}
}

// InitMetrics returns every metric at its type default. Unknown metric types
// are left out; Validate reports them.
func InitMetrics(specs []MetricSpec) Metrics {
	m := make(Metrics, len(specs))
	for _, spec := range specs {
		if v, err := DefaultValue(spec.Type); err == nil {
			m[spec.Name] = v
		}
	}
	return m
}
