package probe

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	pcsv "tablepipe/internal/parser/csv"
	"tablepipe/internal/normalize"
	"tablepipe/internal/schema"
)

// maxSampleRows bounds how many data rows feed type inference.
const maxSampleRows = 10000

// readSample returns the first usable line as headers and the following rows
// whose field count matches it. Malformed and empty lines are skipped.
func readSample(data []byte, comma rune) ([]string, [][]string, error) {
	text := pcsv.StripBOM(string(data))
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var headers []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		headers = rec
		break
	}

	var rows [][]string
	for len(rows) < maxSampleRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) != len(headers) {
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

func column(rows [][]string, i int) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[i])
	}
	return out
}

// inferColumnType reports number when every non-empty value is accepted by
// the number normalizer, and string otherwise. A column with no non-empty
// values is a string.
func inferColumnType(values []string) schema.ColumnType {
	seen := false
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		seen = true
		if _, err := normalize.Value(v, schema.TypeNumber); err != nil {
			return schema.TypeString
		}
	}
	if !seen {
		return schema.TypeString
	}
	return schema.TypeNumber
}

// columnWidth is the widest trimmed value or header plus two spaces of
// separation, never below the default width.
func columnWidth(header string, values []string) int {
	w := utf8.RuneCountInString(strings.TrimSpace(header))
	for _, v := range values {
		if n := utf8.RuneCountInString(strings.TrimSpace(v)); n > w {
			w = n
		}
	}
	w += 2
	if w < schema.DefaultColumnWidth {
		w = schema.DefaultColumnWidth
	}
	return w
}

// normalizeFieldName lowercases s, strips accents and collapses separators
// into single underscores: "Počet obyvatel" becomes "pocet_obyvatel".
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, s)

	var b bytes.Buffer
	underscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
