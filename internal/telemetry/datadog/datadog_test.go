package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"tablepipe/internal/telemetry"
)

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}
	got := labelsToTags(telemetry.Labels{"step": "parse", "job": "cities", "status": "success"})
	want := []string{"job:cities", "status:success", "step:parse"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("labelsToTags() = %v, want %v", got, want)
	}
}

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend(empty) error = nil, want non-nil")
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(telemetry.RowsTotal, 1, nil)
	b.ObserveHistogram(telemetry.StepDuration, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

/*
TestSendsToAgent runs a UDP listener in place of the DogStatsD agent and
checks that a counter reaches it with namespace and tags.
*/
func TestSendsToAgent(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Namespace: "tablepipe."})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(telemetry.RowsTotal, 10, telemetry.Labels{"kind": "collected"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	buf := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	got := string(buf[:n])
	if !strings.Contains(got, "tablepipe."+telemetry.RowsTotal+":10|c") {
		t.Fatalf("payload = %q, want counter line", got)
	}
	if !strings.Contains(got, "kind:collected") {
		t.Fatalf("payload = %q, want kind tag", got)
	}
}
