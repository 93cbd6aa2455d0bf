// Package datasource defines where pipeline input text comes from.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Source opens the input stream for one pipeline run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ErrTooLarge is returned by ReadAll when the input exceeds the size limit.
var ErrTooLarge = fmt.Errorf("datasource: input exceeds size limit")

// ReadAll opens src and reads it fully into a string. maxBytes <= 0 means no
// limit. The table works on whole texts, so the limit is the only guard
// against an unexpectedly large input.
func ReadAll(ctx context.Context, src Source, maxBytes int64) (string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}
	return string(b), nil
}

// Reader adapts an already open reader, such as os.Stdin, to Source. Close
// on the returned stream is a no-op.
type Reader struct{ R io.Reader }

func (s Reader) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(s.R), nil
}
