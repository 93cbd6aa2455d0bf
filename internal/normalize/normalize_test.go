package normalize

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

var cityColumns = []schema.ColumnSpec{
	{Name: "city", Type: schema.TypeString},
	{Name: "population", Type: schema.TypeNumber},
	{Name: "density", Type: schema.TypeNumber},
	{
		Name: "relativeDensity",
		Type: schema.TypeNumber,
		Calculate: func(records.Record, schema.Metrics) (any, error) {
			return float64(1), nil
		},
	},
}

/*
TestPlanRow_TableDriven verifies the conversion rules of Plan.Row:
  - strings are trimmed,
  - numbers are trimmed and parsed, empty means 0,
  - absent fields take the type default,
  - computed columns get a placeholder regardless of the raw value.
*/
func TestPlanRow_TableDriven(t *testing.T) {
	t.Parallel()

	p, err := Compile(cityColumns)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name string
		in   records.Record
		want records.Record
	}{
		{
			name: "trim_and_parse",
			in:   records.Record{"city": "  Rome ", "population": " 1", "density": "2.5"},
			want: records.Record{"city": "Rome", "population": 1.0, "density": 2.5, "relativeDensity": 0.0},
		},
		{
			name: "missing_fields_default",
			in:   records.Record{"city": "Oslo"},
			want: records.Record{"city": "Oslo", "population": 0.0, "density": 0.0, "relativeDensity": 0.0},
		},
		{
			name: "empty_number_is_zero",
			in:   records.Record{"city": "", "population": "", "density": "  "},
			want: records.Record{"city": "", "population": 0.0, "density": 0.0, "relativeDensity": 0.0},
		},
		{
			name: "computed_raw_value_ignored",
			in:   records.Record{"city": "X", "relativeDensity": "not-a-number"},
			want: records.Record{"city": "X", "population": 0.0, "density": 0.0, "relativeDensity": 0.0},
		},
		{
			name: "extra_fields_dropped",
			in:   records.Record{"city": "X", "country": "Y"},
			want: records.Record{"city": "X", "population": 0.0, "density": 0.0, "relativeDensity": 0.0},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Row(tc.in)
			if err != nil {
				t.Fatalf("Row: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %#v\nwant %#v", got, tc.want)
			}
		})
	}
}

func TestPlanRow_InvalidValues(t *testing.T) {
	t.Parallel()

	p, err := Compile(cityColumns)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, in := range []records.Record{
		{"density": "bad-number"},
		{"density": "Infinity"},
		{"density": "NaN"},
		{"density": "1e400"},
		{"density": math.Inf(1)},
		{"density": true},
		{"city": 12.0},
	} {
		_, err := p.Row(in)
		if !errors.Is(err, schema.ErrInvalidValue) {
			t.Fatalf("%#v: err=%v want ErrInvalidValue", in, err)
		}
		var ve *schema.ValueError
		if !errors.As(err, &ve) {
			t.Fatalf("%#v: err=%T want *schema.ValueError", in, err)
		}
	}
}

func TestPlanRow_ErrorNamesValue(t *testing.T) {
	t.Parallel()

	_, err := Row(records.Record{"density": "bad-number"}, cityColumns)
	var ve *schema.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v want *schema.ValueError", err)
	}
	if ve.Column != "density" || ve.Value != "bad-number" {
		t.Fatalf("ValueError=%#v want column density value bad-number", ve)
	}
}

func TestCompile_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := Compile([]schema.ColumnSpec{{Name: "when", Type: "date"}})
	if !errors.Is(err, schema.ErrNotImplemented) {
		t.Fatalf("err=%v want ErrNotImplemented", err)
	}
}

// Normalizing an already-normalized row yields the same values.
func TestPlanRow_Idempotent(t *testing.T) {
	t.Parallel()

	p, err := Compile(cityColumns)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	first, err := p.Row(records.Record{"city": " Lagos ", "population": "16060303", "density": " 13712 "})
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	second, err := p.Row(first)
	if err != nil {
		t.Fatalf("Row(normalized): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\nfirst  %#v\nsecond %#v", first, second)
	}
}

func TestValue(t *testing.T) {
	t.Parallel()

	if v, err := Value(" 42 ", schema.TypeNumber); err != nil || v != 42.0 {
		t.Fatalf("Value=%v,%v want 42", v, err)
	}
	if v, err := Value(7, schema.TypeNumber); err != nil || v != 7.0 {
		t.Fatalf("Value(int)=%v,%v want 7", v, err)
	}
	if _, err := Value("x", "bool"); !errors.Is(err, schema.ErrNotImplemented) {
		t.Fatalf("err=%v want ErrNotImplemented", err)
	}
}

func BenchmarkPlanRow(b *testing.B) {
	p, err := Compile(cityColumns)
	if err != nil {
		b.Fatal(err)
	}
	raw := records.Record{"city": "Shanghai", "population": "24256800", "density": "3826"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := p.Row(raw); err != nil {
			b.Fatal(err)
		}
	}
}
