package otpflow

import (
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricRequestCodeSuccess)
	m.Inc(MetricRequestCodeSuccess)
	m.Inc(MetricVerifyFailure)

	snap := m.Snapshot()
	if got := snap.Counters[MetricRequestCodeSuccess]; got != 2 {
		t.Errorf("request success = %d, want 2", got)
	}
	if got := snap.Counters[MetricVerifyFailure]; got != 1 {
		t.Errorf("verify failure = %d, want 1", got)
	}
	if got := snap.Counters[MetricLogout]; got != 0 {
		t.Errorf("logout = %d, want 0", got)
	}

	// Snapshot is a copy, not a live view.
	m.Inc(MetricRequestCodeSuccess)
	if got := snap.Counters[MetricRequestCodeSuccess]; got != 2 {
		t.Errorf("snapshot mutated after Inc: %d", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricRequestCodeSuccess)

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Errorf("disabled snapshot has %d counters, want 0", len(snap.Counters))
	}
}

func TestMetricsOutOfRangeIDIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount)     // must not panic
	m.Inc(metricIDCount + 5) // must not panic
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricVerifySuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Counters[MetricVerifySuccess]; got != 8000 {
		t.Errorf("verify success = %d, want 8000", got)
	}
}
