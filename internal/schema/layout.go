package schema

// DefaultColumnWidth is used for columns that declare no width.
const DefaultColumnWidth = 6

const (
	AlignLeft  = "left"
	AlignRight = "right"
)

// LayoutCell is the display hint for one column. It only affects padding.
type LayoutCell struct {
	Width int    `json:"width"`
	Align string `json:"align,omitempty"`
}

// Layout derives one cell per declared column. The first column is left
// aligned and the rest right aligned unless a column says otherwise.
func (s *Schema) Layout() []LayoutCell {
	out := make([]LayoutCell, len(s.Columns))
	for i, c := range s.Columns {
		cell := LayoutCell{Width: c.Width, Align: c.Align}
		if cell.Width <= 0 {
			cell.Width = DefaultColumnWidth
		}
		if cell.Align == "" {
			cell.Align = AlignRight
			if i == 0 {
				cell.Align = AlignLeft
			}
		}
		out[i] = cell
	}
	return out
}
