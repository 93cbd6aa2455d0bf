// Package table owns a schema and turns delimited text into an ordered,
// fully computed row set.
//
// Fill runs the stages in a fixed order:
//
//	parse -> normalize + fold metrics -> computed columns -> sort
//
// Metrics are final before the first computed column is evaluated. A Table is
// not safe for concurrent use; a successful Fill replaces the previous rows
// and metrics in place.
package table

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"tablepipe/internal/accumulate"
	"tablepipe/internal/aggregate"
	"tablepipe/internal/compute"
	"tablepipe/internal/normalize"
	"tablepipe/internal/order"
	"tablepipe/internal/parser"
	pcsv "tablepipe/internal/parser/csv"
	"tablepipe/internal/records"
	"tablepipe/internal/schema"
	"tablepipe/internal/telemetry"
)

// Table is a schema plus the result of the most recent successful Fill.
type Table struct {
	name       string
	schema     *schema.Schema
	parser     parser.Parser
	aggregates *aggregate.Registry
	plan       *normalize.Plan
	layout     []schema.LayoutCell

	rows    []records.Record
	metrics schema.Metrics
}

// Option configures a Table.
type Option func(*Table)

// WithParser replaces the default comma splitter.
func WithParser(p parser.Parser) Option {
	return func(t *Table) {
		if p != nil {
			t.parser = p
		}
	}
}

// WithAggregates replaces the default aggregate registry.
func WithAggregates(r *aggregate.Registry) Option {
	return func(t *Table) {
		if r != nil {
			t.aggregates = r
		}
	}
}

// WithName sets the job name reported to telemetry. It defaults to the
// schema name.
func WithName(name string) Option {
	return func(t *Table) { t.name = name }
}

// New validates s and prepares a Table for it. s is copied; later changes to
// it do not affect the table. Expression columns are compiled here, so a bad
// expression, an unknown type or an unknown aggregate fails now rather than
// on the first row.
func New(s *schema.Schema, opts ...Option) (*Table, error) {
	if s == nil {
		return nil, fmt.Errorf("table: nil schema")
	}
	t := &Table{
		schema:     clone(s),
		parser:     pcsv.Default,
		aggregates: aggregate.Default(),
	}
	t.name = t.schema.Name
	for _, o := range opts {
		o(t)
	}

	if err := schema.Validate(t.schema, t.aggregates); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	if err := compute.Bind(t.schema); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	plan, err := normalize.Compile(t.schema.Columns)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	t.plan = plan
	t.layout = t.schema.Layout()
	t.metrics = schema.InitMetrics(t.schema.Metrics)
	return t, nil
}

// Fill parses text with the table's parser. See FillWith.
func (t *Table) Fill(text string) (*Table, error) {
	return t.FillWith(text, t.parser)
}

// FillWith runs the whole pipeline over text using p. On success the rows and
// metrics are replaced and t is returned for chaining. On error the table
// keeps its previous state and nil is returned with the error.
func (t *Table) FillWith(text string, p parser.Parser) (*Table, error) {
	if p == nil {
		p = t.parser
	}
	start := time.Now()
	res, err := t.run(text, p)
	telemetry.RecordStep(t.name, "fill", err, time.Since(start))
	if err != nil {
		telemetry.RecordRows(t.name, "rejected", 1)
		return nil, err
	}
	telemetry.RecordRows(t.name, "collected", len(res.Rows))

	t.rows, t.metrics = res.Rows, res.Metrics
	return t, nil
}

func (t *Table) run(text string, p parser.Parser) (accumulate.Result, error) {
	acc, err := accumulate.New(t.schema, accumulate.Helpers{
		Normalize:  t.plan.Row,
		Aggregates: t.aggregates,
	})
	if err != nil {
		return accumulate.Result{}, err
	}

	err = t.step("parse", func() error { return p.Parse(text, acc.Collect) })
	if err != nil {
		return accumulate.Result{}, err
	}
	res := acc.Finish()

	err = t.step("compute", func() error {
		return compute.Populate(res.Rows, t.schema.Columns, res.Metrics)
	})
	if err != nil {
		return accumulate.Result{}, err
	}

	_ = t.step("sort", func() error {
		order.Rows(res.Rows, t.schema.SortBy)
		return nil
	})
	return res, nil
}

func (t *Table) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	telemetry.RecordStep(t.name, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Rows returns a copy of the rows in sorted order.
func (t *Table) Rows() []records.Record {
	out := make([]records.Record, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// Metrics returns a copy of the final metrics.
func (t *Table) Metrics() schema.Metrics { return maps.Clone(t.metrics) }

// Schema returns a copy of the table's schema.
func (t *Table) Schema() *schema.Schema { return clone(t.schema) }

// Layout returns the display layout for the formatter.
func (t *Table) Layout() []schema.LayoutCell { return slices.Clone(t.layout) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Name returns the job name used for telemetry.
func (t *Table) Name() string { return t.name }

func clone(s *schema.Schema) *schema.Schema {
	c := *s
	c.Columns = slices.Clone(s.Columns)
	c.Metrics = slices.Clone(s.Metrics)
	if s.SortBy != nil {
		sb := *s.SortBy
		c.SortBy = &sb
	}
	return &c
}
