package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"tablepipe/internal/compute"
)

// Defaults applied by Load when a field is left empty.
const (
	DefaultParserKind   = "split"
	DefaultOutputFormat = "text"
	DefaultSourceKind   = "stdin"
	DefaultMetrics      = "none"
)

// Load reads a pipeline file, decoding YAML for .yaml/.yml and JSON
// otherwise, then applies defaults, environment overrides and compiles the
// expression columns of the schema.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	p, err := Decode(b, format)
	if err != nil {
		return Pipeline{}, fmt.Errorf("%s: %w", path, err)
	}
	p.ApplyEnv(os.Getenv)
	return p, nil
}

// Decode parses a pipeline document in the given format ("json" or "yaml"),
// applies defaults and binds expression columns. Unknown JSON fields are
// rejected so typos in a pipeline file do not pass silently.
func Decode(b []byte, format string) (Pipeline, error) {
	var p Pipeline
	switch format {
	case "yaml":
		if err := yaml.UnmarshalStrict(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return Pipeline{}, fmt.Errorf("unknown config format %q", format)
	}

	p.applyDefaults()
	if err := compute.Bind(&p.Schema); err != nil {
		return Pipeline{}, fmt.Errorf("schema: %w", err)
	}
	return p, nil
}

func (p *Pipeline) applyDefaults() {
	if p.Job == "" {
		p.Job = p.Schema.Name
	}
	if p.Source.Kind == "" {
		p.Source.Kind = DefaultSourceKind
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = DefaultParserKind
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Output.Format == "" {
		p.Output.Format = DefaultOutputFormat
	}
	if p.Metrics.Backend == "" {
		p.Metrics.Backend = DefaultMetrics
	}
}

// ApplyEnv overrides metrics settings from the environment:
// METRICS_BACKEND, PUSHGATEWAY_URL and DD_AGENT_ADDR.
func (p *Pipeline) ApplyEnv(getenv func(string) string) {
	if v := getenv("METRICS_BACKEND"); v != "" {
		p.Metrics.Backend = v
	}
	if v := getenv("PUSHGATEWAY_URL"); v != "" {
		p.Metrics.PushgatewayURL = v
	}
	if v := getenv("DD_AGENT_ADDR"); v != "" {
		p.Metrics.DatadogAddr = v
	}
}
