// Package order sorts the final row set by one numeric column.
//
// Only number columns are supported. Values that are not float64 compare as
// NaN, which sorts them first in ascending order and last in descending
// order; the resulting order carries no meaning and callers must not rely on
// it. Sorting by a string column is outside the contract.
package order

import (
	"cmp"
	"math"
	"slices"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// Rows sorts rows in place by sortBy.Column. A nil sortBy is a no-op. The
// sort is stable, so rows with equal keys keep their arrival order.
func Rows(rows []records.Record, sortBy *schema.SortBy) {
	if sortBy == nil || len(rows) < 2 {
		return
	}
	col := sortBy.Column
	if sortBy.Ascending() {
		slices.SortStableFunc(rows, func(a, b records.Record) int {
			return cmp.Compare(key(a, col), key(b, col))
		})
		return
	}
	slices.SortStableFunc(rows, func(a, b records.Record) int {
		return cmp.Compare(key(b, col), key(a, col))
	})
}

func key(r records.Record, col string) float64 {
	if f, ok := r.Float(col); ok {
		return f
	}
	return math.NaN()
}
