package output

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"tablepipe/internal/schema"
)

// Text writes one line per row. Cell i is padded to the width of layout cell
// i modulo the layout length: the first cell of a line is left aligned and
// the others right aligned unless the layout says otherwise. Values wider
// than their cell are not truncated.
type Text struct {
	// Header prints the column names as a first line.
	Header bool
}

func (t Text) Write(w io.Writer, r Result) error {
	s := r.Schema()
	layout := r.Layout()
	if len(layout) == 0 {
		layout = []schema.LayoutCell{{Width: schema.DefaultColumnWidth}}
	}
	names := s.ColumnNames()

	bw := bufio.NewWriter(w)
	var line strings.Builder
	emit := func(cells func(i int) string) error {
		line.Reset()
		for i := range names {
			cell := layout[i%len(layout)]
			align := cell.Align
			if align == "" {
				align = schema.AlignRight
				if i == 0 {
					align = schema.AlignLeft
				}
			}
			pad(&line, cells(i), cell.Width, align)
		}
		line.WriteByte('\n')
		_, err := bw.WriteString(line.String())
		return err
	}

	if t.Header {
		if err := emit(func(i int) string { return names[i] }); err != nil {
			return err
		}
	}
	for _, row := range r.Rows() {
		if err := emit(func(i int) string { return FormatValue(row[names[i]]) }); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func pad(b *strings.Builder, s string, width int, align string) {
	n := width - utf8.RuneCountInString(s)
	if align == schema.AlignLeft {
		b.WriteString(s)
	}
	for ; n > 0; n-- {
		b.WriteByte(' ')
	}
	if align != schema.AlignLeft {
		b.WriteString(s)
	}
}
