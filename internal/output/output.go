// Package output renders a filled table: padded text for terminals, JSON,
// Arrow IPC streams and Parquet files.
package output

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// Result is the read-only view of a table the writers need. *table.Table
// satisfies it.
type Result interface {
	Schema() *schema.Schema
	Rows() []records.Record
	Metrics() schema.Metrics
	Layout() []schema.LayoutCell
}

// Writer renders a Result to w.
type Writer interface {
	Write(w io.Writer, r Result) error
}

// Format names accepted by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatArrow   = "arrow"
	FormatParquet = "parquet"
)

// New returns the writer for format. An empty format selects text.
func New(format string) (Writer, error) {
	switch format {
	case "", FormatText:
		return Text{}, nil
	case FormatJSON:
		return JSON{Indent: "  "}, nil
	case FormatArrow:
		return Arrow{}, nil
	case FormatParquet:
		return Parquet{}, nil
	default:
		return nil, fmt.Errorf("output format %q: %w", format, schema.ErrNotImplemented)
	}
}

// FormatValue renders a cell the way it is displayed: integral numbers
// without a fractional part, other numbers in their shortest form, strings
// as-is and missing values as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsInf(x, 1) {
			return "Infinity"
		}
		if math.IsInf(x, -1) {
			return "-Infinity"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
