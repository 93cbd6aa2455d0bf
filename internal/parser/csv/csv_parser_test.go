package csv_test

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"tablepipe/internal/config"
	"tablepipe/internal/parser"
	pcsv "tablepipe/internal/parser/csv"
	jsonparser "tablepipe/internal/parser/json"
	"tablepipe/internal/records"
)

func keys(r records.Record) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestSplitter_EmitsRowsAndTrimsHeader(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{}, "\uFEFFcity, population\nRome, 1\n\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len=%d want 1", len(recs))
	}
	if got, want := keys(recs[0]), []string{"city", "population"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys=%v want %v", got, want)
	}
	if v := recs[0]["city"]; v != "Rome" {
		t.Fatalf("city=%q want Rome", v)
	}
	// Cells are not trimmed by the parser.
	if v := recs[0]["population"]; v != " 1" {
		t.Fatalf("population=%q want %q", v, " 1")
	}
}

func TestSplitter_NoDataRows(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "city,density", "city,density\n", "city,density\n\n\r\n"} {
		recs, err := parser.Collect(pcsv.Splitter{}, in)
		if err != nil {
			t.Fatalf("%q: parse: %v", in, err)
		}
		if len(recs) != 0 {
			t.Fatalf("%q: got %d rows, want 0", in, len(recs))
		}
	}
}

func TestSplitter_RowWidth(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{}, "a,b,c\n1\n1,2,3,4\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d want 2", len(recs))
	}
	if got, want := recs[0], (records.Record{"a": "1"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("short row=%#v want %#v", got, want)
	}
	if got, want := recs[1], (records.Record{"a": "1", "b": "2", "c": "3"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("long row=%#v want %#v", got, want)
	}
}

func TestSplitter_CommaAlwaysSplits(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{}, "city,country\n\"Sao Paulo, SP\",Brazil")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := recs[0]["city"]; got != `"Sao Paulo` {
		t.Fatalf("city=%q; quotes must not be honored", got)
	}
	if got := recs[0]["country"]; got != ` SP"` {
		t.Fatalf("country=%q", got)
	}
}

func TestSplitter_CRLF(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{}, "a,b\r\n1,2\r\n3,4\r\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 || recs[1]["b"] != "4" {
		t.Fatalf("got %#v", recs)
	}
}

func TestSplitter_CROnlyLineIsBlank(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var got []string
	err := pcsv.Splitter{}.Parse("a,b\n1,2\n\r\n3,4\n", func(r records.Record) error {
		got = append(got, r["a"].(string))
		if r["a"] == "3" {
			return boom
		}
		return nil
	})
	if strings.Join(got, ",") != "1,3" {
		t.Fatalf("rows=%v want [1 3]", got)
	}
	var le *parser.LineError
	if !errors.As(err, &le) || le.Line != 4 {
		t.Fatalf("err=%#v want LineError at line 4", err)
	}
}

func TestSplitter_CustomComma(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{Comma: ';'}, "a;b\n1;2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := recs[0], (records.Record{"a": "1", "b": "2"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("row=%#v want %#v", got, want)
	}
}

func TestSplitter_CallbackErrorStopsParse(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := pcsv.Splitter{}.Parse("a\n1\n\n2\n3", func(records.Record) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
	var le *parser.LineError
	if !errors.As(err, &le) || le.Line != 4 {
		t.Fatalf("err=%#v want LineError at line 4", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func utf16LE(s string) string {
	var b strings.Builder
	b.WriteString("\xFF\xFE")
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		b.WriteByte(0)
	}
	return b.String()
}

func TestStripBOM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
	}{
		{"utf8", "\uFEFFcity", "city"},
		{"swapped", "\uFFFEcity", "city"},
		{"latin1_mojibake", "\u00EF\u00BB\u00BFcity", "city"},
		{"utf16le", utf16LE("city,n\nA,1"), "city,n\nA,1"},
		{"none", "city", "city"},
		{"inner_bom_kept", "ci\uFEFFty", "ci\uFEFFty"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := pcsv.StripBOM(tc.in); got != tc.want {
				t.Fatalf("StripBOM(%q)=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitter_UTF16Input(t *testing.T) {
	t.Parallel()

	recs, err := parser.Collect(pcsv.Splitter{}, utf16LE("city,n\nA,1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 1 || recs[0]["city"] != "A" || recs[0]["n"] != "1" {
		t.Fatalf("got %#v", recs)
	}
}

func TestReader_QuotedFields(t *testing.T) {
	t.Parallel()

	p := pcsv.NewReader(pcsv.Options{
		TrimSpace: true,
		HeaderMap: map[string]string{"Město": "city"},
	})
	recs, err := parser.Collect(p, "\uFEFFMěsto, country\n\"Sao Paulo, SP\", Brazil\n\nRome\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d want 2", len(recs))
	}
	if got, want := recs[0], (records.Record{"city": "Sao Paulo, SP", "country": "Brazil"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("row0=%#v want %#v", got, want)
	}
	if got, want := recs[1], (records.Record{"city": "Rome"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("row1=%#v want %#v", got, want)
	}
}

func TestReader_MalformedQuote(t *testing.T) {
	t.Parallel()

	_, err := parser.Collect(pcsv.NewReader(pcsv.Options{}), "a,b\n\"x,1\n")
	if err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	p, err := pcsv.New("", config.Options{"comma": ";"})
	if err != nil {
		t.Fatalf("New split: %v", err)
	}
	if s, ok := p.(pcsv.Splitter); !ok || s.Comma != ';' {
		t.Fatalf("got %#v want Splitter{Comma:';'}", p)
	}
	if _, err := pcsv.New(pcsv.KindCSV, config.Options{}); err != nil {
		t.Fatalf("New csv: %v", err)
	}
	if p, err := pcsv.New(pcsv.KindJSON, config.Options{"allow_arrays": true}); err != nil {
		t.Fatalf("New json: %v", err)
	} else if jp, ok := p.(jsonparser.Parser); !ok || !jp.AllowArrays {
		t.Fatalf("got %#v want json Parser{AllowArrays:true}", p)
	}
	if _, err := pcsv.New("xml", nil); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func BenchmarkSplitter(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("city,population,area,density,country\n")
	for i := 0; i < 10000; i++ {
		sb.WriteString("City,24256800,6340,3826,China\n")
	}
	text := sb.String()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = pcsv.Splitter{}.Parse(text, func(records.Record) error { return nil })
	}
}
