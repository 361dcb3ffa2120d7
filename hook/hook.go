// Package hook defines the extension system for lockstep.
// Extensions are notified of job lifecycle events (submitted, started,
// completed, failed, wait timed out) and can react to them — logging,
// metrics, bookkeeping.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package hook

import (
	"context"
	"time"

	"github.com/reko-labs/lockstep/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// JobSubmitted is called after a job is successfully handed to the
// task-queue engine.
type JobSubmitted interface {
	OnJobSubmitted(ctx context.Context, j *job.Job) error
}

// JobStarted is called when the worker confirms pickup via the receipt
// channel.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobCompleted is called after a job's command finishes successfully.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobFailed is called when the worker reports abnormal termination.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, message string) error
}

// WaitTimedOut is called when a confirmation or completion wait expires
// before a signal arrives.
type WaitTimedOut interface {
	OnWaitTimedOut(ctx context.Context, j *job.Job, waited time.Duration) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
