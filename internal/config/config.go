// Package config defines the pipeline file model for tablepipe: where the
// text comes from, how it is split into records, the table schema, how the
// result is written and where run metrics go.
//
// Pipeline files are JSON or YAML (configs/pipelines/*.json, *.yaml).
//
// Example (trimmed):
//
//	{
//	  "job":    "cities",
//	  "source": { "kind": "file", "file": { "path": "testdata/cities.csv" } },
//	  "parser": { "kind": "split" },
//	  "schema": {
//	    "columns": [
//	      { "name": "city", "type": "string" },
//	      { "name": "density", "type": "number" },
//	      { "name": "relativeDensity", "type": "number",
//	        "expr": "round(density * 100 / maxDensity)" }
//	    ],
//	    "metrics": [ { "name": "maxDensity", "type": "number", "from": "density", "aggregate": "max" } ],
//	    "sort_by": { "column": "relativeDensity", "order": "desc" }
//	  },
//	  "output": { "format": "text" }
//	}
package config

import (
	"encoding/json"
	"fmt"

	"tablepipe/internal/schema"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and telemetry. Defaults to the schema name.
	Job string `json:"job" yaml:"job"`

	Source  Source        `json:"source" yaml:"source"`
	Parser  Parser        `json:"parser" yaml:"parser"`
	Schema  schema.Schema `json:"schema" yaml:"schema"`
	Output  Output        `json:"output" yaml:"output"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
}

// Source identifies where the input text comes from.
type Source struct {
	// Kind is "file", "http" or "stdin".
	Kind string `json:"kind" yaml:"kind"`

	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string `json:"url" yaml:"url"`
	TimeoutSeconds     int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Parser selects the record splitter.
type Parser struct {
	// Kind is "split" (default) or "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser implementation:
	//   comma (string), trim_space (bool), lazy_quotes (bool), header_map (object)
	Options Options `json:"options" yaml:"options"`
}

// Output selects the result writer.
type Output struct {
	// Format is "text" (default), "json", "arrow" or "parquet".
	Format string `json:"format" yaml:"format"`

	// Path is the destination file; empty means stdout.
	Path string `json:"path" yaml:"path"`
}

// Metrics selects the telemetry backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Options is a small helper to fetch typed values from a decoded options
// object. It performs only minimal type coercion and returns the provided
// default when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// YAML integers as int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns the string-valued entries of the object at key. Returns
// an empty map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a missing or null options object to an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML decodes an options mapping, converting the nested
// map[interface{}]interface{} values yaml.v2 produces into map[string]any so
// the getters behave the same for both file formats.
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	var tmp map[string]any
	if err := unmarshal(&tmp); err != nil {
		return err
	}
	out := make(Options, len(tmp))
	for k, v := range tmp {
		cv, err := stringKeys(v)
		if err != nil {
			return fmt.Errorf("options.%s: %w", k, err)
		}
		out[k] = cv
	}
	*o = out
	return nil
}

func stringKeys(v any) (any, error) {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			cv, err := stringKeys(vv)
			if err != nil {
				return nil, err
			}
			m[ks] = cv
		}
		return m, nil
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			cv, err := stringKeys(vv)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	default:
		return v, nil
	}
}
