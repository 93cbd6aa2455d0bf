package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"tablepipe/internal/config"
	"tablepipe/internal/datasource"
	"tablepipe/internal/reference"
	"tablepipe/internal/telemetry"
	"tablepipe/internal/telemetry/datadog"
	"tablepipe/internal/telemetry/prompush"
)

// main loads a pipeline (or falls back to the built-in cities table), fills
// the table from the configured source and writes the result.
func main() {
	var (
		cfgPath           string
		input             string
		formatFlg         string
		outFlg            string
		metricsBackendFlg string
		pushGatewayURLFlg string
		header            bool
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config path (.json, .yaml or .yml); empty uses the built-in cities schema")
	flag.StringVar(&input, "input", "", "input file for the built-in schema; \"-\" reads stdin, empty uses the bundled sample")
	flag.StringVar(&formatFlg, "format", "", "output format: text, json, arrow or parquet (overrides config)")
	flag.StringVar(&outFlg, "out", "", "output path (overrides config; empty writes stdout)")
	flag.BoolVar(&header, "header", false, "print a header line in text output")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides config and env)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config and env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	p, err := loadPipeline(cfgPath, input)
	if err != nil {
		fatalf("%v", err)
	}
	if formatFlg != "" {
		p.Output.Format = formatFlg
	}
	if outFlg != "" {
		p.Output.Path = outFlg
	}
	if metricsBackendFlg != "" {
		p.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		p.Metrics.PushgatewayURL = pushGatewayURLFlg
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", describe(cfgPath))
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", describe(cfgPath))
		os.Exit(0)
	}

	opts := runOptions{Header: header, Stdin: os.Stdin, Stdout: os.Stdout}
	if cfgPath == "" && input == "" {
		opts.Source = datasource.Reader{R: strings.NewReader(reference.SampleData)}
	}
	if err := execute(p, opts, *verbose); err != nil {
		log.Fatalf("%v", err)
	}
}

// execute runs the pipeline with telemetry installed and flushed.
func execute(p config.Pipeline, opts runOptions, verbose bool) error {
	if flush := installMetrics(p, verbose); flush != nil {
		defer flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if verbose {
		log.Printf("pipeline: job=%s source=%s parser=%s output=%s",
			p.Job, p.Source.Kind, p.Parser.Kind, p.Output.Format)
	}

	start := time.Now()
	n, err := run(ctx, p, opts)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("completed: %d rows in %s", n, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

// loadPipeline reads cfgPath, or builds the cities pipeline when it is empty.
// The built-in pipeline reads input as a file, or stdin for "-" and "".
func loadPipeline(cfgPath, input string) (config.Pipeline, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}

	p := config.Pipeline{
		Job:    "cities",
		Schema: *reference.Schema(),
		Source: config.Source{Kind: "stdin"},
		Parser: config.Parser{Kind: config.DefaultParserKind, Options: config.Options{}},
		Output: config.Output{Format: config.DefaultOutputFormat},
	}
	if input != "" && input != "-" {
		p.Source = config.Source{Kind: "file", File: config.SourceFile{Path: input}}
	}
	p.Metrics.Backend = config.DefaultMetrics
	p.ApplyEnv(os.Getenv)
	return p, nil
}

// installMetrics sets the telemetry backend named by p.Metrics and returns
// its flush function, or nil when metrics are disabled.
func installMetrics(p config.Pipeline, verbose bool) func() {
	var (
		b   telemetry.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		gwURL := p.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		job := p.Job
		if job == "" {
			job = prompush.DefaultJob
		}
		b, err = prompush.NewBackend(job, gwURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=pushgateway, job_name=%v", gwURL, job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "tablepipe.",
			GlobalTags: []string{"job:" + p.Job},
		})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=datadog", p.Metrics.DatadogAddr)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
		return nil
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", p.Metrics.Backend)
		return nil
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", p.Metrics.Backend, err)
		return nil
	}

	telemetry.SetBackend(b)
	return func() {
		if err := telemetry.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func describe(cfgPath string) string {
	if cfgPath == "" {
		return "built-in cities pipeline"
	}
	return cfgPath
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
