package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerWithOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("testns"),
		WithSubsystem("testsub"),
		WithHistogramBuckets([]float64{1, 5, 10}),
		WithRegistry(reg),
	)

	if m.namespace != "testns" {
		t.Errorf("namespace = %q, want testns", m.namespace)
	}
	if m.subsystem != "testsub" {
		t.Errorf("subsystem = %q, want testsub", m.subsystem)
	}
	if len(m.histogramBuckets) != 3 {
		t.Errorf("buckets = %v, want 3 entries", m.histogramBuckets)
	}
}

func TestGlobalHelpers(t *testing.T) {
	// These exercise the global manager; they should never panic.
	RecordScoreComputed("B+", 86.5, 1.0)
	RecordScoringLatency(412)
	ScoreStarted()
	ScoreFinished()
	RecordCollectorRequest("spotify", "success")
	RecordCollectorLatency("spotify", 180)
	RecordLLMRequest("analyze", "ok")
	RecordLLMLatency(900)
	RecordCacheHit()
	RecordCacheMiss()
	RecordHTTPRequest("score", "GET", "200")
	RecordHTTPRequestDuration("score", "GET", "200", 520)
}

func TestGetRegistry(t *testing.T) {
	if GetRegistry() == nil {
		t.Fatal("registry is nil")
	}
}
