package main

import (
	"bytes"
	"strings"
	"testing"

	"tablepipe/internal/synth"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{"ROWS": "10", "RUNS": "2", "WARMUP": "0", "SEED": "7", "FORMAT": "1"}
	o := options{rows: 1, runs: 1, warmup: 1, seed: 42}
	if err := applyEnv(&o, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	want := options{rows: 10, runs: 2, warmup: 0, seed: 7, format: true}
	if o != want {
		t.Fatalf("options = %+v, want %+v", o, want)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, kv := range [][2]string{{"ROWS", "x"}, {"RUNS", "-1"}, {"SEED", "99999999999"}} {
		env := map[string]string{kv[0]: kv[1]}
		var o options
		if err := applyEnv(&o, func(k string) string { return env[k] }); err == nil {
			t.Fatalf("%s=%s: expected error", kv[0], kv[1])
		}
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	o := options{rows: 200, runs: 2, warmup: 1, seed: 42, format: true}
	if err := run(&out, o); err != nil {
		t.Fatalf("run: %v", err)
	}
	s := out.String()
	for _, want := range []string{"rows=200 runs=2", "run 1:", "run 2:", "Summary", "digest "} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRun_RejectsZeroRuns(t *testing.T) {
	if err := run(&bytes.Buffer{}, options{rows: 1, runs: 0}); err == nil {
		t.Fatalf("expected error for zero runs")
	}
}

func TestRunOnce_DigestStable(t *testing.T) {
	o := options{rows: 50}
	a, err := runOnce(synth.Generate(50, 42), o)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runOnce(synth.Generate(50, 42), o)
	if err != nil {
		t.Fatal(err)
	}
	if a.digest != b.digest {
		t.Fatalf("digest changed between runs: %x vs %x", a.digest, b.digest)
	}
}

func TestRunOnce_RowMismatch(t *testing.T) {
	if _, err := runOnce(synth.Generate(5, 42), options{rows: 6}); err == nil {
		t.Fatalf("expected row count error")
	}
}
