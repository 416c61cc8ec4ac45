package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryOpCounts(t *testing.T) {
	m := New()
	m.RegistryOp("register", true)
	m.RegistryOp("register", false)
	m.RegistryOp("register", false)
	m.RegistryError("verify")

	if got := testutil.ToFloat64(m.registryOps.WithLabelValues("register", "rejected")); got != 2 {
		t.Fatalf("expected 2 rejected registrations, got %v", got)
	}
	if got := testutil.ToFloat64(m.registryOps.WithLabelValues("verify", "error")); got != 1 {
		t.Fatalf("expected 1 verify error, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RegistryOp("register", true)
	m.WriterDepth(3)
	m.WriterApplied(false)
	m.WorkflowEvent("registration", "complete")
}

func TestWriterDepthGauge(t *testing.T) {
	m := New()
	m.WriterDepth(4)
	if got := testutil.ToFloat64(m.writerDepth); got != 4 {
		t.Fatalf("expected depth 4, got %v", got)
	}
}
