package schema

import (
	"errors"
	"fmt"
	"strings"
)

// AggregateLookup reports whether an aggregate name is registered.
type AggregateLookup interface {
	Has(name string) bool
}

// Validate checks s for configuration errors that would otherwise surface on
// the first row: unknown types and aggregates, duplicate names, metrics over
// computed or missing columns, and sorting by a missing column. All problems
// are returned together. aggregates may be nil to skip the aggregate check.
func Validate(s *Schema, aggregates AggregateLookup) error {
	if s == nil {
		return errors.New("schema: nil schema")
	}
	var errs []error

	if len(s.Columns) == 0 {
		errs = append(errs, errors.New("schema: no columns declared"))
	}

	cols := make(map[string]ColumnSpec, len(s.Columns))
	for i, c := range s.Columns {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("columns[%d]: empty name", i))
			continue
		}
		if _, dup := cols[c.Name]; dup {
			errs = append(errs, fmt.Errorf("columns[%d]: duplicate column %q", i, c.Name))
			continue
		}
		cols[c.Name] = c
		if _, err := DefaultValue(c.Type); err != nil {
			errs = append(errs, fmt.Errorf("columns[%d] %q: %w", i, c.Name, err))
		}
	}

	seen := make(map[string]struct{}, len(s.Metrics))
	for i, m := range s.Metrics {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("metrics[%d]: empty name", i))
			continue
		}
		if _, dup := seen[m.Name]; dup {
			errs = append(errs, fmt.Errorf("metrics[%d]: duplicate metric %q", i, m.Name))
		}
		seen[m.Name] = struct{}{}
		if _, clash := cols[m.Name]; clash {
			errs = append(errs, fmt.Errorf("metrics[%d]: metric %q shadows a column", i, m.Name))
		}
		if _, err := DefaultValue(m.Type); err != nil {
			errs = append(errs, fmt.Errorf("metrics[%d] %q: %w", i, m.Name, err))
		}
		src, ok := cols[m.From]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("metrics[%d] %q: unknown source column %q", i, m.Name, m.From))
		case src.Computed():
			errs = append(errs, fmt.Errorf("metrics[%d] %q: source column %q is computed", i, m.Name, m.From))
		}
		if aggregates != nil && !aggregates.Has(m.Aggregate) {
			errs = append(errs, fmt.Errorf("metrics[%d] %q: %w", i, m.Name,
				&UnsupportedError{Kind: "aggregate", Name: m.Aggregate}))
		}
	}

	if s.SortBy != nil {
		if _, ok := cols[s.SortBy.Column]; !ok {
			errs = append(errs, fmt.Errorf("sort_by: unknown column %q", s.SortBy.Column))
		}
	}

	return errors.Join(errs...)
}
