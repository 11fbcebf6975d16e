package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()
	m.RateLimitHits.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	New(registry)
}

func TestObserveAppend(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAppend("recorded", 20*time.Millisecond)
	m.ObserveAppend("recorded", 30*time.Millisecond)
	m.ObserveAppend("busy", time.Second)

	if got := testutil.ToFloat64(m.Appends.WithLabelValues("recorded")); got != 2 {
		t.Fatalf("expected 2 recorded appends, got %v", got)
	}
	if got := testutil.ToFloat64(m.Appends.WithLabelValues("busy")); got != 1 {
		t.Fatalf("expected 1 busy append, got %v", got)
	}
	if got := testutil.CollectAndCount(m.AppendDuration); got != 2 {
		t.Fatalf("expected 2 duration series, got %d", got)
	}
}
