package csv

import (
	"fmt"

	"tablepipe/internal/config"
	"tablepipe/internal/parser"
	jsonparser "tablepipe/internal/parser/json"
	"tablepipe/internal/schema"
)

// Parser kinds accepted by New.
const (
	KindSplit = "split"
	KindCSV   = "csv"
	KindJSON  = "json"
)

// New builds the parser named by kind from a pipeline options bag. An empty
// kind selects the Splitter. Recognized options:
//
//	comma (string; first rune used; default ",")
//	trim_space (bool; csv only; default false)
//	lazy_quotes (bool; csv only; default false)
//	header_map (object; csv only)
//	allow_arrays (bool; json only; default false)
func New(kind string, opt config.Options) (parser.Parser, error) {
	switch kind {
	case "", KindSplit:
		return Splitter{Comma: opt.Rune("comma", ',')}, nil
	case KindCSV:
		return NewReader(Options{
			Comma:      opt.Rune("comma", ','),
			TrimSpace:  opt.Bool("trim_space", false),
			LazyQuotes: opt.Bool("lazy_quotes", false),
			HeaderMap:  opt.StringMap("header_map"),
		}), nil
	case KindJSON:
		return jsonparser.Parser{AllowArrays: opt.Bool("allow_arrays", false)}, nil
	default:
		return nil, fmt.Errorf("parser kind %q: %w", kind, schema.ErrNotImplemented)
	}
}
