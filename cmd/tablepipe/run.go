package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"tablepipe/internal/config"
	"tablepipe/internal/datasource"
	"tablepipe/internal/datasource/file"
	"tablepipe/internal/datasource/httpds"
	pcsv "tablepipe/internal/parser/csv"
	"tablepipe/internal/output"
	"tablepipe/internal/table"
)

// defaultMaxInput caps how much text one run reads into memory.
const defaultMaxInput = 1 << 30

type runOptions struct {
	// Header adds a column name line to text output.
	Header bool

	// Source replaces the source described by the pipeline.
	Source datasource.Source

	Stdin  io.Reader
	Stdout io.Writer

	// MaxBytes limits the input size; 0 uses defaultMaxInput.
	MaxBytes int64
}

// run fills the pipeline's table from its source and writes the result to
// the configured output. It returns the number of rows written.
func run(ctx context.Context, p config.Pipeline, opts runOptions) (int, error) {
	src := opts.Source
	if src == nil {
		var err error
		if src, err = buildSource(p.Source, opts.Stdin); err != nil {
			return 0, err
		}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxInput
	}

	text, err := datasource.ReadAll(ctx, src, maxBytes)
	if err != nil {
		return 0, fmt.Errorf("source %s: %w", p.Source.Kind, err)
	}

	prs, err := pcsv.New(p.Parser.Kind, p.Parser.Options)
	if err != nil {
		return 0, err
	}
	t, err := table.New(&p.Schema, table.WithParser(prs), table.WithName(p.Job))
	if err != nil {
		return 0, fmt.Errorf("table: %w", err)
	}
	if _, err := t.Fill(text); err != nil {
		return 0, fmt.Errorf("fill %s: %w", t.Name(), err)
	}

	wr, err := output.New(p.Output.Format)
	if err != nil {
		return 0, err
	}
	if _, ok := wr.(output.Text); ok {
		wr = output.Text{Header: opts.Header}
	}

	if p.Output.Path == "" {
		return t.Len(), wr.Write(opts.Stdout, t)
	}
	f, err := os.Create(p.Output.Path)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	if err := wr.Write(f, t); err != nil {
		f.Close()
		return 0, fmt.Errorf("write %s: %w", p.Output.Path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", p.Output.Path, err)
	}
	return t.Len(), nil
}

// buildSource maps a pipeline source block to a datasource.Source.
func buildSource(s config.Source, stdin io.Reader) (datasource.Source, error) {
	switch s.Kind {
	case "", "stdin":
		if stdin == nil {
			return nil, fmt.Errorf("source stdin: no input reader")
		}
		return datasource.Reader{R: stdin}, nil
	case "file":
		return file.NewLocal(s.File.Path), nil
	case "http":
		return httpds.New(httpds.Config{
			URL:                s.HTTP.URL,
			Timeout:            time.Duration(s.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries:         s.HTTP.MaxRetries,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", s.Kind)
	}
}
