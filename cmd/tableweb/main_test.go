package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"tablepipe/internal/webui"
)

type fakeServer struct {
	err error
}

func (f *fakeServer) ListenAndServe() error { return f.err }

// Tests swap the package-level newServer, so they do not run in parallel.
func TestRun(t *testing.T) {
	cases := []struct {
		name       string
		args       []string
		listenErr  error
		wantAddr   string
		wantSchema string
		wantLogHas string
		wantErr    bool
	}{
		{
			name:       "default address",
			listenErr:  errors.New("boom"),
			wantAddr:   ":8080",
			wantLogHas: "listening on :8080",
			wantErr:    true,
		},
		{
			name:       "custom address via flag",
			args:       []string{"-addr", "127.0.0.1:9999"},
			wantAddr:   "127.0.0.1:9999",
			wantLogHas: "listening on 127.0.0.1:9999",
		},
		{
			name:       "schema from config",
			args:       []string{"-config", filepath.Join("..", "..", "configs", "pipelines", "cities.yaml")},
			wantAddr:   ":8080",
			wantSchema: "cities",
		},
		{
			name:    "missing config",
			args:    []string{"-config", "does-not-exist.yaml"},
			wantErr: true,
		},
		{
			name:    "unknown flag returns error",
			args:    []string{"-bogus"},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got webui.Config
			orig := newServer
			defer func() { newServer = orig }()
			newServer = func(cfg webui.Config) server {
				got = cfg
				return &fakeServer{err: c.listenErr}
			}

			var buf bytes.Buffer
			err := run(c.args, log.New(&buf, "", 0))

			if c.wantAddr != "" && got.Addr != c.wantAddr {
				t.Fatalf("addr = %q, want %q", got.Addr, c.wantAddr)
			}
			if c.wantSchema != "" && (got.Schema == nil || got.Schema.Name != c.wantSchema) {
				t.Fatalf("schema = %+v, want %q", got.Schema, c.wantSchema)
			}
			if c.wantLogHas != "" && !strings.Contains(buf.String(), c.wantLogHas) {
				t.Fatalf("log output %q does not contain %q", buf.String(), c.wantLogHas)
			}
			if c.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func Example_run() {
	var buf bytes.Buffer
	orig := newServer
	newServer = func(webui.Config) server { return &fakeServer{} }
	defer func() { newServer = orig }()

	_ = run([]string{"-addr", ":9090"}, log.New(&buf, "", 0))
	fmt.Print(buf.String())

	// Output:
	// listening on :9090
}
