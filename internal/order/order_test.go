package order

import (
	"testing"

	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

func cities(rows []records.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r["city"].(string)
	}
	return out
}

func sample() []records.Record {
	return []records.Record{
		{"city": "A", "d": 10.0},
		{"city": "B", "d": 30.0},
		{"city": "C", "d": 20.0},
		{"city": "D", "d": 20.0},
	}
}

func TestRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sortBy *schema.SortBy
		want   []string
	}{
		{"nil_is_noop", nil, []string{"A", "B", "C", "D"}},
		{"asc", &schema.SortBy{Column: "d", Order: "asc"}, []string{"A", "C", "D", "B"}},
		{"desc", &schema.SortBy{Column: "d", Order: "desc"}, []string{"B", "C", "D", "A"}},
		{"empty_order_is_desc", &schema.SortBy{Column: "d"}, []string{"B", "C", "D", "A"}},
		{"unknown_order_is_desc", &schema.SortBy{Column: "d", Order: "ASC"}, []string{"B", "C", "D", "A"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rows := sample()
			Rows(rows, tc.sortBy)
			got := cities(rows)
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("order=%v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestRows_SingleAndEmpty(t *testing.T) {
	t.Parallel()

	Rows(nil, &schema.SortBy{Column: "d"})
	one := []records.Record{{"city": "A", "d": 1.0}}
	Rows(one, &schema.SortBy{Column: "d"})
	if one[0]["city"] != "A" {
		t.Fatalf("single row changed: %v", one)
	}
}
