package output

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"sort"
)

// JSON writes {"rows": [...], "metrics": {...}}. Row objects keep the
// schema's column order; metrics are sorted by name. Non-finite numbers are
// written as null.
type JSON struct {
	Indent string
}

func (j JSON) Write(w io.Writer, r Result) error {
	names := r.Schema().ColumnNames()

	var buf bytes.Buffer
	buf.WriteString(`{"rows":[`)
	for i, row := range r.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for k, name := range names {
			if k > 0 {
				buf.WriteByte(',')
			}
			if err := writePair(&buf, name, row[name]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`],"metrics":{`)

	m := r.Metrics()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writePair(&buf, k, m[k]); err != nil {
			return err
		}
	}
	buf.WriteString("}}")

	out := buf.Bytes()
	if j.Indent != "" {
		var ind bytes.Buffer
		if err := json.Indent(&ind, out, "", j.Indent); err != nil {
			return err
		}
		out = ind.Bytes()
	}
	out = append(out, '\n')
	_, err := w.Write(out)
	return err
}

func writePair(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')

	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		v = nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
