package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"tablepipe/internal/config"
	"tablepipe/internal/datasource"
	"tablepipe/internal/datasource/file"
	"tablepipe/internal/datasource/httpds"
	"tablepipe/internal/probe"
)

// main samples a file or URL, infers a starter pipeline and prints it as
// YAML or JSON. The output is meant to be edited and then passed to
// tablepipe -config.
func main() {
	var (
		flagURL      = flag.String("url", "", "URL of the source file")
		flagFile     = flag.String("file", "", "path of a local source file")
		flagBytes    = flag.Int("bytes", probe.DefaultMaxBytes, "number of bytes to sample from the start of the source")
		flagName     = flag.String("name", "dataset", "dataset name used for the schema and job")
		flagComma    = flag.String("comma", ",", "field delimiter")
		flagFormat   = flag.String("format", "yaml", "output format: yaml or json")
		flagInsecure = flag.Bool("allow-insecure", false, "skip TLS certificate verification")
	)
	flag.Parse()

	src, block, err := source(*flagURL, *flagFile, *flagInsecure)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	comma := []rune(*flagComma)
	if len(comma) != 1 {
		log.Fatalf("probe: -comma must be a single character, got %q", *flagComma)
	}
	p, err := probe.Probe(ctx, src, probe.Options{
		MaxBytes: *flagBytes,
		Comma:    comma[0],
		Name:     *flagName,
		Source:   block,
	})
	if err != nil {
		log.Fatalf("probe: %v", err)
	}
	if err := encode(os.Stdout, p, *flagFormat); err != nil {
		log.Fatalf("encode config: %v", err)
	}
}

// source picks the datasource and the matching pipeline source block.
func source(url, path string, insecure bool) (datasource.Source, config.Source, error) {
	switch {
	case url != "" && path != "":
		return nil, config.Source{}, fmt.Errorf("use either -url or -file, not both")
	case url != "":
		return httpds.New(httpds.Config{URL: url, InsecureSkipVerify: insecure}),
			config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: url, InsecureSkipVerify: insecure}}, nil
	case path != "":
		return file.NewLocal(path), config.Source{Kind: "file", File: config.SourceFile{Path: path}}, nil
	default:
		return nil, config.Source{}, fmt.Errorf("missing -url or -file")
	}
}

func encode(w io.Writer, p config.Pipeline, format string) error {
	switch format {
	case "yaml", "yml":
		b, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
