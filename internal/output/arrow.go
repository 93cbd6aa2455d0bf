package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tablepipe/internal/schema"
)

// Arrow writes the rows as a single record batch in the Arrow IPC stream
// format. String columns map to utf8 and number columns to float64. Metrics
// travel as schema metadata ("metric.<name>" -> formatted value).
type Arrow struct {
	// Allocator defaults to memory.DefaultAllocator.
	Allocator memory.Allocator
}

func (a Arrow) Write(w io.Writer, r Result) error {
	mem := a.Allocator
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rec, err := buildRecord(mem, r)
	if err != nil {
		return err
	}
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return fmt.Errorf("arrow: write record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("arrow: close writer: %w", err)
	}
	return nil
}

// ArrowSchema maps s to an Arrow schema with the given metrics as metadata.
func ArrowSchema(s *schema.Schema, m schema.Metrics) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s.Columns))
	for i, c := range s.Columns {
		var dt arrow.DataType
		switch c.Type {
		case schema.TypeString:
			dt = arrow.BinaryTypes.String
		case schema.TypeNumber:
			dt = arrow.PrimitiveTypes.Float64
		default:
			return nil, fmt.Errorf("column %q: %w", c.Name, &schema.UnsupportedError{Kind: "type", Name: string(c.Type)})
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mk := make([]string, len(keys))
	mv := make([]string, len(keys))
	for i, k := range keys {
		mk[i] = "metric." + k
		mv[i] = FormatValue(m[k])
	}
	md := arrow.NewMetadata(mk, mv)
	return arrow.NewSchema(fields, &md), nil
}

func buildRecord(mem memory.Allocator, r Result) (arrow.Record, error) {
	s := r.Schema()
	sc, err := ArrowSchema(s, r.Metrics())
	if err != nil {
		return nil, err
	}

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	rows := r.Rows()
	for i, c := range s.Columns {
		switch fb := b.Field(i).(type) {
		case *array.StringBuilder:
			fb.Reserve(len(rows))
			for _, row := range rows {
				if v, ok := row[c.Name].(string); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Float64Builder:
			fb.Reserve(len(rows))
			for _, row := range rows {
				if v, ok := row[c.Name].(float64); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		}
	}
	return b.NewRecord(), nil
}
