package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/reko-labs/lockstep/hook"
	"github.com/reko-labs/lockstep/job"
)

const meterName = "github.com/reko-labs/lockstep/observability"

// Compile-time interface checks.
var (
	_ hook.Extension    = (*MetricsExtension)(nil)
	_ hook.JobSubmitted = (*MetricsExtension)(nil)
	_ hook.JobStarted   = (*MetricsExtension)(nil)
	_ hook.JobCompleted = (*MetricsExtension)(nil)
	_ hook.JobFailed    = (*MetricsExtension)(nil)
	_ hook.WaitTimedOut = (*MetricsExtension)(nil)
)

// MetricsExtension records job lifecycle metrics. Register it as a
// dispatcher extension to track submission rates, completion counts,
// failure rates, wait timeouts, and end-to-end job duration.
type MetricsExtension struct {
	submitted metric.Int64Counter
	started   metric.Int64Counter
	completed metric.Int64Counter
	failed    metric.Int64Counter
	timedOut  metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global meter
// provider.
func NewMetricsExtension() (*MetricsExtension, error) {
	return NewMetricsExtensionWithMeter(otel.GetMeterProvider().Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use an sdk meter backed by a manual reader for tests.
func NewMetricsExtensionWithMeter(meter metric.Meter) (*MetricsExtension, error) {
	submitted, err := meter.Int64Counter("lockstep.job.submitted",
		metric.WithDescription("Number of jobs handed to the task-queue engine"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, err
	}
	started, err := meter.Int64Counter("lockstep.job.started",
		metric.WithDescription("Number of jobs whose start was confirmed by the worker"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, err
	}
	completed, err := meter.Int64Counter("lockstep.job.completed",
		metric.WithDescription("Number of jobs that finished successfully"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("lockstep.job.failed",
		metric.WithDescription("Number of jobs that terminated abnormally"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, err
	}
	timedOut, err := meter.Int64Counter("lockstep.wait.timed_out",
		metric.WithDescription("Number of confirmation or completion waits that expired"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("lockstep.job.duration",
		metric.WithDescription("End-to-end job duration from submit to completion"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &MetricsExtension{
		submitted: submitted,
		started:   started,
		completed: completed,
		failed:    failed,
		timedOut:  timedOut,
		duration:  duration,
	}, nil
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnJobSubmitted implements hook.JobSubmitted.
func (m *MetricsExtension) OnJobSubmitted(ctx context.Context, j *job.Job) error {
	m.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("job", j.Name())))
	return nil
}

// OnJobStarted implements hook.JobStarted.
func (m *MetricsExtension) OnJobStarted(ctx context.Context, j *job.Job) error {
	m.started.Add(ctx, 1, metric.WithAttributes(attribute.String("job", j.Name())))
	return nil
}

// OnJobCompleted implements hook.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	attrs := metric.WithAttributes(attribute.String("job", j.Name()))
	m.completed.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	return nil
}

// OnJobFailed implements hook.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, j *job.Job, _ string) error {
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("job", j.Name())))
	return nil
}

// OnWaitTimedOut implements hook.WaitTimedOut.
func (m *MetricsExtension) OnWaitTimedOut(ctx context.Context, j *job.Job, _ time.Duration) error {
	m.timedOut.Add(ctx, 1, metric.WithAttributes(attribute.String("job", j.Name())))
	return nil
}
