package table

import (
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Digest hashes the rows in order, field by field in column order, with
// xxh3. Two fills of the same input under the same schema produce the same
// digest; any change in values or row order changes it.
func (t *Table) Digest() uint64 {
	h := xxh3.New()
	var buf []byte
	for _, row := range t.rows {
		for _, c := range t.schema.Columns {
			buf = appendValue(buf[:0], row[c.Name])
			buf = append(buf, 0x1f)
			_, _ = h.Write(buf)
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

func appendValue(dst []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(dst, x...)
	case float64:
		return strconv.AppendUint(dst, math.Float64bits(x), 16)
	case nil:
		return dst
	default:
		return append(dst, '?')
	}
}
