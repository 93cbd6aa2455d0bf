package aggregate

import (
	"errors"
	"reflect"
	"testing"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

func foldAll(t *testing.T, fn Reducer, field string, values ...float64) any {
	t.Helper()
	var acc any
	for _, v := range values {
		var err error
		acc, err = fn(acc, records.Record{field: v}, field)
		if err != nil {
			t.Fatalf("reduce %v: %v", v, err)
		}
	}
	return acc
}

func TestReducers(t *testing.T) {
	t.Parallel()

	vals := []float64{3826, 11313, -5, 13712, 2593}
	tests := []struct {
		name string
		fn   Reducer
		want float64
	}{
		{"max", Max, 13712},
		{"min", Min, -5},
		{"sum", Sum, 3826 + 11313 - 5 + 13712 + 2593},
		{"count", Count, 5},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := foldAll(t, tc.fn, "density", vals...); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

// The fold result must not depend on arrival order.
func TestReducers_OrderIndependent(t *testing.T) {
	t.Parallel()

	fwd := []float64{1, 7, 3, 9, 2}
	rev := []float64{2, 9, 3, 7, 1}
	for name, fn := range map[string]Reducer{"max": Max, "min": Min, "sum": Sum, "count": Count} {
		if a, b := foldAll(t, fn, "n", fwd...), foldAll(t, fn, "n", rev...); a != b {
			t.Fatalf("%s: forward=%v reverse=%v", name, a, b)
		}
	}
}

func TestMax_UnsetIsNegativeInfinity(t *testing.T) {
	t.Parallel()

	got, err := Max(nil, records.Record{"n": -1e300}, "n")
	if err != nil {
		t.Fatalf("Max: %v", err)
	}
	if got != -1e300 {
		t.Fatalf("got %v want -1e300", got)
	}
	if got := foldAll(t, Max, "n"); got != nil {
		t.Fatalf("no rows: got %v want nil", got)
	}
}

func TestReducers_NonNumericField(t *testing.T) {
	t.Parallel()

	_, err := Max(nil, records.Record{"n": "12"}, "n")
	if !errors.Is(err, schema.ErrInvalidValue) {
		t.Fatalf("err=%v want ErrInvalidValue", err)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := Default()
	if got, want := r.Names(), []string{"count", "max", "min", "sum"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names=%v want %v", got, want)
	}
	if _, err := r.Lookup("median"); !errors.Is(err, schema.ErrNotImplemented) {
		t.Fatalf("Lookup(median) err=%v want ErrNotImplemented", err)
	}

	r.Register("last", func(_ any, row records.Record, field string) (any, error) {
		return row[field], nil
	})
	if !r.Has("last") {
		t.Fatalf("Has(last)=false after Register")
	}
	fn, err := r.Lookup("last")
	if err != nil {
		t.Fatalf("Lookup(last): %v", err)
	}
	if v, _ := fn(nil, records.Record{"x": 4.0}, "x"); v != 4.0 {
		t.Fatalf("last=%v want 4", v)
	}
}
