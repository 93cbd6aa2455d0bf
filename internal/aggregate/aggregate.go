// Package aggregate holds the registry of metric reducers.
//
// A reducer folds one normalized row into a running accumulator. Reducers
// must not depend on row position: the only ordering guarantee is arrival
// order, and the result over a set of rows must be the same for any order.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// Reducer combines the running accumulator with row[field]. acc is nil
// before the first row is folded.
type Reducer func(acc any, row records.Record, field string) (any, error)

// Registry maps aggregate names to reducers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	reducers map[string]Reducer
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{reducers: make(map[string]Reducer)}
}

// Default returns a registry holding max, min, sum and count.
func Default() *Registry {
	r := New()
	r.Register("max", Max)
	r.Register("min", Min)
	r.Register("sum", Sum)
	r.Register("count", Count)
	return r
}

// Register adds or replaces the reducer for name.
func (r *Registry) Register(name string, fn Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[name] = fn
}

// Lookup returns the reducer for name. An unregistered name fails with an
// error wrapping schema.ErrNotImplemented.
func (r *Registry) Lookup(name string) (Reducer, error) {
	r.mu.RLock()
	fn, ok := r.reducers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &schema.UnsupportedError{Kind: "aggregate", Name: name}
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.reducers[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.reducers))
	for name := range r.reducers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Max keeps the larger of the accumulator and row[field]. An unset
// accumulator counts as negative infinity.
func Max(acc any, row records.Record, field string) (any, error) {
	return fold(acc, row, field, math.Inf(-1), func(a, v float64) float64 {
		if v > a {
			return v
		}
		return a
	})
}

// Min keeps the smaller of the accumulator and row[field]. An unset
// accumulator counts as positive infinity.
func Min(acc any, row records.Record, field string) (any, error) {
	return fold(acc, row, field, math.Inf(1), func(a, v float64) float64 {
		if v < a {
			return v
		}
		return a
	})
}

// Sum adds row[field] to the accumulator.
func Sum(acc any, row records.Record, field string) (any, error) {
	return fold(acc, row, field, 0, func(a, v float64) float64 { return a + v })
}

// Count counts folded rows; field is only checked for presence of a number.
func Count(acc any, row records.Record, field string) (any, error) {
	return fold(acc, row, field, 0, func(a, _ float64) float64 { return a + 1 })
}

func fold(acc any, row records.Record, field string, unset float64, step func(a, v float64) float64) (any, error) {
	a := unset
	if acc != nil {
		f, ok := acc.(float64)
		if !ok {
			return nil, fmt.Errorf("accumulator %v (%T): %w", acc, acc, schema.ErrInvalidValue)
		}
		a = f
	}
	v, ok := row.Float(field)
	if !ok {
		return nil, &schema.ValueError{Column: field, Value: row[field]}
	}
	return step(a, v), nil
}
