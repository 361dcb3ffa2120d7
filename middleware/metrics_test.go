package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mw "github.com/reko-labs/lockstep/middleware"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestMetrics_RecordsDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := mw.MetricsWithMeter(provider.Meter("test"))

	err := m(context.Background(), testInvocation(), func(_ context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rm := collectMetrics(t, reader)
	hist, ok := findMetric(rm, "lockstep.command.duration")
	if !ok {
		t.Fatal("expected lockstep.command.duration metric")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected float64 histogram, got %T", hist.Data)
	}
	if len(data.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(data.DataPoints))
	}
	if data.DataPoints[0].Count != 1 {
		t.Errorf("expected count 1, got %d", data.DataPoints[0].Count)
	}
}

func TestMetrics_CountsByStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := mw.MetricsWithMeter(provider.Meter("test"))
	inv := testInvocation()

	_ = m(context.Background(), inv, func(_ context.Context) error { return nil })
	_ = m(context.Background(), inv, func(_ context.Context) error { return errors.New("boom") })

	rm := collectMetrics(t, reader)
	counter, ok := findMetric(rm, "lockstep.command.executions")
	if !ok {
		t.Fatal("expected lockstep.command.executions metric")
	}
	data, ok := counter.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", counter.Data)
	}

	counts := make(map[string]int64)
	for _, dp := range data.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		counts[status.AsString()] += dp.Value
	}
	if counts["ok"] != 1 {
		t.Errorf("expected 1 ok execution, got %d", counts["ok"])
	}
	if counts["error"] != 1 {
		t.Errorf("expected 1 error execution, got %d", counts["error"])
	}
}
