package config

import (
	"errors"
	"fmt"
	"strings"

	"tablepipe/internal/aggregate"
	"tablepipe/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is a dotted path into the config
// (e.g. "source.file.path", "schema").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline lints p without mutating it. The schema is checked
// against the default aggregate registry.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; telemetry will carry an empty job label",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateSchema(p.Schema)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "", "stdin":
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		u := strings.TrimSpace(s.HTTP.URL)
		if u == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  "http source requires a url",
			})
		} else if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  fmt.Sprintf("url %q must start with http:// or https://", u),
			})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.max_retries",
				Message:  "max_retries must not be negative",
			})
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.http.insecure_skip_verify",
				Message:  "TLS verification is disabled",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (want stdin, file or http)", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	switch p.Kind {
	case "", "split":
		for _, k := range []string{"trim_space", "lazy_quotes", "header_map"} {
			if p.Options.Any(k) != nil {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     "parser.options." + k,
					Message:  "option only applies to the csv parser; ignored by split",
				})
			}
		}
	case "csv":
	case "json":
		for _, k := range []string{"comma", "trim_space", "lazy_quotes", "header_map"} {
			if p.Options.Any(k) != nil {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     "parser.options." + k,
					Message:  "option does not apply to the json parser; ignored",
				})
			}
		}
		return issues
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q (want split, csv or json)", p.Kind),
		})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	return issues
}

// validateSchema reports every problem schema.Validate finds as its own issue.
func validateSchema(s schema.Schema) []Issue {
	err := schema.Validate(&s, aggregate.Default())
	if err == nil {
		return nil
	}
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else {
		errs = []error{err}
	}
	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		var ue *schema.UnsupportedError
		if errors.As(e, &ue) && ue.Kind == "aggregate" {
			msg += " (registered aggregates: " + strings.Join(aggregate.Default().Names(), ", ") + ")"
		}
		issues = append(issues, Issue{Severity: SeverityError, Path: "schema", Message: msg})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	switch o.Format {
	case "", "text", "json":
		return nil
	case "arrow", "parquet":
		if o.Path == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "output.path",
				Message:  o.Format + " output is binary; writing it to stdout",
			}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "output.format",
			Message:  fmt.Sprintf("unknown output format %q (want text, json, arrow or parquet)", o.Format),
		}}
	}
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if m.PushgatewayURL == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url (or PUSHGATEWAY_URL)",
			}}
		}
		return nil
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr (or DD_AGENT_ADDR)",
			}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		}}
	}
}
