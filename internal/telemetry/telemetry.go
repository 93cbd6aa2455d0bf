// Package telemetry records operational metrics about pipeline runs.
//
// It is unrelated to the table metrics a schema declares: these are counters
// and durations for the process itself (how many fills ran, how long the
// parse step took, how many rows were rejected). The default backend discards
// everything, so callers can instrument freely; cmd/tablepipe installs a
// Prometheus Pushgateway or DogStatsD backend when configured.
package telemetry

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal    = "tablepipe_step_total"
	StepDuration = "tablepipe_step_duration_seconds"
	RowsTotal    = "tablepipe_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step and observes its
// duration. Steps are "parse", "compute", "sort" and "fill".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds n to the row counter for kind. Kinds used by the table
// are "collected" and "rejected". Non-positive n is ignored.
func RecordRows(job, kind string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}
