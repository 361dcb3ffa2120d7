package observability_test

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/reko-labs/lockstep/job"
	"github.com/reko-labs/lockstep/observability"
)

func setupExtension(t *testing.T) (*observability.MetricsExtension, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ext, err := observability.NewMetricsExtensionWithMeter(provider.Meter("test"))
	if err != nil {
		t.Fatalf("new metrics extension: %v", err)
	}
	return ext, reader
}

func sumMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s: expected int64 sum, got %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func testJob(t *testing.T) *job.Job {
	t.Helper()
	j, err := job.New("metrics", "refresh_rollups")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return j
}

func TestMetricsExtension_CountsLifecycleEvents(t *testing.T) {
	ext, reader := setupExtension(t)
	ctx := context.Background()
	j := testJob(t)

	if err := ext.OnJobSubmitted(ctx, j); err != nil {
		t.Fatalf("OnJobSubmitted: %v", err)
	}
	if err := ext.OnJobStarted(ctx, j); err != nil {
		t.Fatalf("OnJobStarted: %v", err)
	}
	if err := ext.OnJobCompleted(ctx, j, 2*time.Second); err != nil {
		t.Fatalf("OnJobCompleted: %v", err)
	}
	if err := ext.OnJobFailed(ctx, j, "ORA-00942"); err != nil {
		t.Fatalf("OnJobFailed: %v", err)
	}
	if err := ext.OnWaitTimedOut(ctx, j, time.Minute); err != nil {
		t.Fatalf("OnWaitTimedOut: %v", err)
	}

	checks := map[string]int64{
		"lockstep.job.submitted":  1,
		"lockstep.job.started":    1,
		"lockstep.job.completed":  1,
		"lockstep.job.failed":     1,
		"lockstep.wait.timed_out": 1,
	}
	for name, want := range checks {
		if got := sumMetric(t, reader, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestMetricsExtension_RecordsDuration(t *testing.T) {
	ext, reader := setupExtension(t)
	j := testJob(t)

	if err := ext.OnJobCompleted(context.Background(), j, 1500*time.Millisecond); err != nil {
		t.Fatalf("OnJobCompleted: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "lockstep.job.duration" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("expected float64 histogram, got %T", m.Data)
			}
			if len(hist.DataPoints) != 1 {
				t.Fatalf("expected 1 data point, got %d", len(hist.DataPoints))
			}
			if got := hist.DataPoints[0].Sum; got != 1.5 {
				t.Errorf("duration sum = %v, want 1.5", got)
			}
			return
		}
	}
	t.Fatal("lockstep.job.duration metric not found")
}
