// Command tableweb starts a small web front end for filling tables and
// probing samples.
//
// Usage:
//
//	go run ./cmd/tableweb -addr :8080
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"tablepipe/internal/config"
	"tablepipe/internal/schema"
	"tablepipe/internal/webui"
)

type server interface {
	ListenAndServe() error
}

var newServer = func(cfg webui.Config) server { return webui.NewServer(cfg) }

func main() {
	if err := run(os.Args[1:], log.Default()); err != nil {
		log.Fatal(err)
	}
}

// run parses args, builds the server and blocks in ListenAndServe.
func run(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("tableweb", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	cfgPath := fs.String("config", "", "pipeline config whose schema the fill routes use; empty uses the cities schema")
	maxBytes := fs.Int64("max-bytes", webui.DefaultMaxBytes, "request body limit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var s *schema.Schema
	if *cfgPath != "" {
		p, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		if issues := config.ValidatePipeline(p); config.HasErrors(issues) {
			return fmt.Errorf("invalid config %s: %v", *cfgPath, issues)
		}
		s = &p.Schema
	}

	srv := newServer(webui.Config{Addr: *addr, Schema: s, MaxBytes: *maxBytes})
	logger.Printf("listening on %s", *addr)
	return srv.ListenAndServe()
}
