// Package accumulate drives the single pass over parsed records: each raw
// record is normalized, folded into every metric and appended to the row set
// in the same step, so metrics never need a second scan of the table.
//
// An Accumulator has exactly one writer. Its metrics are not final until
// Finish is called, which hands the rows and metrics over to the caller and
// closes the accumulator for further writes.
package accumulate

import (
	"errors"
	"fmt"

	"tablepipe/internal/aggregate"
	"tablepipe/internal/normalize"
	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// ErrFinished is returned by Collect after Finish.
var ErrFinished = errors.New("accumulate: already finished")

// Lookup resolves aggregate names to reducers. *aggregate.Registry satisfies it.
type Lookup interface {
	Lookup(name string) (aggregate.Reducer, error)
}

// Helpers supplies the normalization and aggregation strategies. Zero fields
// fall back to a plan compiled from the schema and aggregate.Default().
type Helpers struct {
	Normalize  func(raw records.Record) (records.Record, error)
	Aggregates Lookup
}

// Result is the outcome of a completed pass.
type Result struct {
	Rows    []records.Record
	Metrics schema.Metrics
}

type metricPlan struct {
	name   string
	from   string
	reduce aggregate.Reducer
}

// Accumulator collects normalized rows and folds metrics over them.
type Accumulator struct {
	normalize func(records.Record) (records.Record, error)
	metrics   []metricPlan

	rows   []records.Record
	values schema.Metrics
	folded bool
	done   bool
}

// New resolves every metric reducer of s up front; an unknown aggregate
// fails with an error wrapping schema.ErrNotImplemented.
func New(s *schema.Schema, h Helpers) (*Accumulator, error) {
	if h.Normalize == nil {
		plan, err := normalize.Compile(s.Columns)
		if err != nil {
			return nil, err
		}
		h.Normalize = plan.Row
	}
	if h.Aggregates == nil {
		h.Aggregates = aggregate.Default()
	}

	a := &Accumulator{
		normalize: h.Normalize,
		metrics:   make([]metricPlan, 0, len(s.Metrics)),
		values:    schema.InitMetrics(s.Metrics),
	}
	for _, m := range s.Metrics {
		fn, err := h.Aggregates.Lookup(m.Aggregate)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", m.Name, err)
		}
		a.metrics = append(a.metrics, metricPlan{name: m.Name, from: m.From, reduce: fn})
	}
	return a, nil
}

// Collect normalizes raw, folds it into every metric, then appends the row.
func (a *Accumulator) Collect(raw records.Record) error {
	if a.done {
		return ErrFinished
	}
	row, err := a.normalize(raw)
	if err != nil {
		return err
	}
	for _, m := range a.metrics {
		var acc any
		if a.folded {
			acc = a.values[m.name]
		}
		v, err := m.reduce(acc, row, m.from)
		if err != nil {
			return fmt.Errorf("metric %q: %w", m.name, err)
		}
		a.values[m.name] = v
	}
	a.folded = true
	a.rows = append(a.rows, row)
	return nil
}

// Len returns the number of rows collected so far.
func (a *Accumulator) Len() int { return len(a.rows) }

// Finish transfers the rows and metrics to the caller. Metrics that no row
// was folded into keep their type default.
func (a *Accumulator) Finish() Result {
	res := Result{Rows: a.rows, Metrics: a.values}
	a.rows, a.values, a.done = nil, nil, true
	return res
}
