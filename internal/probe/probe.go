// Package probe samples the head of a delimited text source and proposes a
// starter pipeline: column names, types and widths, plus a default sort.
// Headers that do not normalize to themselves are mapped through the csv
// parser's header_map.
//
// The result is meant to be written out, hand-edited and then run with
// cmd/tablepipe.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"tablepipe/internal/config"
	"tablepipe/internal/datasource"
	"tablepipe/internal/schema"
)

// DefaultMaxBytes is the sample size used when Options.MaxBytes is zero.
const DefaultMaxBytes = 20000

// Options control sampling and the generated pipeline.
type Options struct {
	// MaxBytes to sample from the start of the source.
	MaxBytes int
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// Name becomes the schema name and, normalized, the job name.
	Name string
	// Source is copied into the generated pipeline as-is.
	Source config.Source
}

// Probe reads a sample from src and infers a pipeline from it.
func Probe(ctx context.Context, src datasource.Source, opt Options) (config.Pipeline, error) {
	n := opt.MaxBytes
	if n <= 0 {
		n = DefaultMaxBytes
	}
	sample, err := peek(ctx, src, n)
	if err != nil {
		return config.Pipeline{}, err
	}
	return FromSample(sample, opt)
}

// FromSample infers a pipeline from an in-memory sample. A trailing partial
// line is dropped when the sample contains at least one newline.
func FromSample(sample []byte, opt Options) (config.Pipeline, error) {
	if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
		sample = sample[:i+1]
	}
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	headers, rows, err := readSample(sample, comma)
	if err != nil {
		return config.Pipeline{}, fmt.Errorf("parse sample: %w", err)
	}
	if len(headers) == 0 {
		return config.Pipeline{}, fmt.Errorf("probe: sample has no header line")
	}

	name := normalizeFieldName(opt.Name)
	s := schema.Schema{Name: name}
	seen := make(map[string]int, len(headers))
	headerMap := map[string]any{}
	for i, h := range headers {
		col := uniqueName(normalizeFieldName(h), seen)
		if trimmed := strings.TrimSpace(h); trimmed != col {
			headerMap[trimmed] = col
		}
		values := column(rows, i)
		s.Columns = append(s.Columns, schema.ColumnSpec{
			Name:  col,
			Type:  inferColumnType(values),
			Width: columnWidth(h, values),
		})
	}
	if first := firstNumber(s.Columns); first != "" {
		s.SortBy = &schema.SortBy{Column: first, Order: "desc"}
	}

	p := config.Pipeline{
		Job:    name,
		Source: opt.Source,
		Parser: config.Parser{Kind: "csv", Options: config.Options{"comma": string(comma), "trim_space": true}},
		Schema: s,
		Output: config.Output{Format: config.DefaultOutputFormat},
	}
	if len(headerMap) > 0 {
		p.Parser.Options["header_map"] = headerMap
	}
	p.Metrics.Backend = config.DefaultMetrics
	if p.Source.Kind == "" {
		p.Source.Kind = config.DefaultSourceKind
	}
	return p, nil
}

// peek reads at most n bytes from the start of src.
func peek(ctx context.Context, src datasource.Source, n int) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, int64(n))); err != nil {
		return nil, fmt.Errorf("peek: %w", err)
	}
	return buf.Bytes(), nil
}

func firstNumber(cols []schema.ColumnSpec) string {
	for _, c := range cols {
		if c.Type == schema.TypeNumber {
			return c.Name
		}
	}
	return ""
}

func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n+1)
}
