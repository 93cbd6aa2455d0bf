// Command tableload measures fill throughput and memory on synthetic city data.
//
// Every run fills a fresh table from the same generated text; the ordered
// output digest must not change between runs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"tablepipe/internal/output"
	"tablepipe/internal/reference"
	"tablepipe/internal/synth"
	"tablepipe/internal/table"
)

const mb = 1024 * 1024

type options struct {
	rows   int
	runs   int
	warmup int
	seed   uint
	format bool
}

type result struct {
	elapsed  time.Duration
	memDelta uint64
	digest   uint64
}

func main() {
	var o options
	flag.IntVar(&o.rows, "rows", 500000, "number of generated data rows (env ROWS)")
	flag.IntVar(&o.runs, "runs", 3, "measured runs (env RUNS)")
	flag.IntVar(&o.warmup, "warmup", 1, "unmeasured warmup runs (env WARMUP)")
	flag.UintVar(&o.seed, "seed", 42, "generator seed (env SEED)")
	flag.BoolVar(&o.format, "format", false, "also render the text table to a discarded writer (env FORMAT=1)")
	flag.Parse()

	if err := applyEnv(&o, os.Getenv); err != nil {
		log.Fatalf("tableload: %v", err)
	}
	if err := run(os.Stdout, o); err != nil {
		log.Fatalf("tableload: %v", err)
	}
}

// applyEnv lets the environment override flag values.
func applyEnv(o *options, getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"ROWS", &o.rows},
		{"RUNS", &o.runs},
		{"WARMUP", &o.warmup},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s=%q", e.key, v)
		}
		*e.dst = n
	}
	if v := getenv("SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SEED=%q", v)
		}
		o.seed = uint(n)
	}
	if v := getenv("FORMAT"); v != "" {
		o.format = v == "1"
	}
	return nil
}

func run(w io.Writer, o options) error {
	if o.runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", o.runs)
	}

	fmt.Fprintln(w, "Load test config")
	fmt.Fprintf(w, "rows=%d runs=%d warmup=%d seed=%d format=%t\n", o.rows, o.runs, o.warmup, o.seed, o.format)
	fmt.Fprintln(w, "Generating data...")
	data := synth.Generate(o.rows, uint32(o.seed))

	for i := 0; i < o.warmup; i++ {
		if _, err := runOnce(data, o); err != nil {
			return fmt.Errorf("warmup %d: %w", i+1, err)
		}
	}

	var (
		totalTime time.Duration
		totalMem  uint64
		digest    uint64
	)
	for i := 0; i < o.runs; i++ {
		r, err := runOnce(data, o)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		if i == 0 {
			digest = r.digest
		} else if r.digest != digest {
			return fmt.Errorf("run %d: digest %016x differs from %016x", i+1, r.digest, digest)
		}
		totalTime += r.elapsed
		totalMem += r.memDelta
		fmt.Fprintf(w, "run %d: %.2f ms | %.0f rows/s | mem %.2f MB\n",
			i+1, ms(r.elapsed), rowsPerSec(o.rows, r.elapsed), float64(r.memDelta)/mb)
	}

	avg := totalTime / time.Duration(o.runs)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "avg %.2f ms | %.0f rows/s | mem %.2f MB | peak rss %.2f MB | digest %016x\n",
		ms(avg), rowsPerSec(o.rows, avg), float64(totalMem)/float64(o.runs)/mb, float64(peakRSS())/mb, digest)
	return nil
}

func runOnce(data string, o options) (result, error) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	t, err := table.New(reference.Schema())
	if err != nil {
		return result{}, err
	}
	if _, err := t.Fill(data); err != nil {
		return result{}, err
	}
	if o.format {
		if err := (output.Text{}).Write(io.Discard, t); err != nil {
			return result{}, err
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	if t.Len() != o.rows {
		return result{}, fmt.Errorf("expected %d rows, got %d", o.rows, t.Len())
	}

	var delta uint64
	if after.HeapAlloc > before.HeapAlloc {
		delta = after.HeapAlloc - before.HeapAlloc
	}
	return result{elapsed: elapsed, memDelta: delta, digest: t.Digest()}, nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func rowsPerSec(rows int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(rows) / d.Seconds()
}
