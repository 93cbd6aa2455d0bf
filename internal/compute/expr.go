package compute

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/vm"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// builtins holds the names expr resolves as functions. A field with one of
// these names is left out of the compile environment so it does not hide the
// function, which also means expressions cannot read it.
var builtins = func() map[string]bool {
	m := make(map[string]bool, len(builtin.Names))
	for _, n := range builtin.Names {
		m[n] = true
	}
	return m
}()

// roundFunc replaces expr's round, which rounds halves away from zero, with
// RoundHalfUp.
var roundFunc = expr.Function("round",
	func(params ...any) (any, error) {
		switch x := params[0].(type) {
		case float64:
			return RoundHalfUp(x), nil
		case int:
			return float64(x), nil
		}
		return nil, fmt.Errorf("round: unsupported argument %T", params[0])
	},
	new(func(float64) float64),
	new(func(int) float64),
)

// Compile turns an expression over row fields and metric names into a
// CalculateFunc, for example:
//
//	round(density * 100 / maxDensity)
//
// The expression may read plain columns and metrics. Identifiers are checked
// at compile time; referencing any other name is an error.
func Compile(src string, s *schema.Schema) (schema.CalculateFunc, error) {
	return compile(src, s, 0)
}

// compile also exposes the computed columns declared before index upto,
// which Populate has already set when the column at upto runs.
func compile(src string, s *schema.Schema, upto int) (schema.CalculateFunc, error) {
	env := make(map[string]any, len(s.Columns)+len(s.Metrics))
	for i, c := range s.Columns {
		if i >= upto && c.Computed() {
			continue
		}
		v, err := schema.DefaultValue(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		if !builtins[c.Name] {
			env[c.Name] = v
		}
	}
	for _, m := range s.Metrics {
		v, err := schema.DefaultValue(m.Type)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", m.Name, err)
		}
		if !builtins[m.Name] {
			env[m.Name] = v
		}
	}

	program, err := expr.Compile(src, expr.Env(env), roundFunc)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return run(program, len(s.Columns)+len(s.Metrics)), nil
}

func run(program *vm.Program, size int) schema.CalculateFunc {
	return func(row records.Record, m schema.Metrics) (any, error) {
		env := make(map[string]any, size)
		for k, v := range row {
			env[k] = v
		}
		for k, v := range m {
			env[k] = v
		}
		return expr.Run(program, env)
	}
}

// Bind compiles the Expr of every computed column that has no Calculate yet.
// Each expression sees the plain columns, the metrics and the computed
// columns declared before it.
func Bind(s *schema.Schema) error {
	for i := range s.Columns {
		c := &s.Columns[i]
		if c.Expr == "" || c.Calculate != nil {
			continue
		}
		fn, err := compile(c.Expr, s, i)
		if err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		c.Calculate = fn
	}
	return nil
}
