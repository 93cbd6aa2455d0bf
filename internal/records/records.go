// Package records defines the header-keyed record shared by every pipeline
// stage. Parsers emit records holding raw string values; the normalizer turns
// them into rows whose values are typed per the column schema.
package records

// Record maps a field name to its value. Raw records carry strings; normalized
// rows carry string or float64 values, one entry per declared column.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Float returns the value of field as a float64 and whether it was one.
func (r Record) Float(field string) (float64, bool) {
	f, ok := r[field].(float64)
	return f, ok
}

// String returns the value of field as a string and whether it was one.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}
