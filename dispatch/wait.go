package dispatch

import (
	"context"
	"time"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/job"
)

// WaitOption configures a single Wait call.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout time.Duration
	channel string
}

// WithTimeout overrides the job's default wait timeout for this call.
func WithTimeout(timeout time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = timeout
	}
}

// WithChannel waits on a specific channel instead of the job's
// completion channel.
func WithChannel(name string) WaitOption {
	return func(o *waitOptions) {
		o.channel = name
	}
}

// Wait blocks until the worker signals the job's completion channel or
// the timeout expires, then reports the job's resulting status. Wait
// never returns an error: a timed-out wait yields StatusWaitTimedOut
// and the caller may simply wait again — the underlying work keeps
// running and a late signal stays consumable.
func (d *Dispatcher) Wait(ctx context.Context, j *job.Job, opts ...WaitOption) job.Status {
	o := waitOptions{
		timeout: j.WaitTimeout(),
		channel: j.Handle(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return d.waitOn(ctx, j, o.channel, o.timeout)
}

// waitOn is the rendezvous engine behind both the caller-facing
// completion wait and Submit's internal confirmation wait. The channel
// determines which one it is: waiting on the job's own handle is a
// completion wait and gets completion bookkeeping (completedAt, default
// message); any other channel is a bare signal wait.
func (d *Dispatcher) waitOn(ctx context.Context, j *job.Job, channel string, timeout time.Duration) job.Status {
	completionWait := channel == j.Handle()
	if completionWait {
		j.SetStatus(job.StatusWaitingConfirm)
	}

	start := time.Now()
	payload, timedOut, err := d.signals.WaitOne(ctx, channel, timeout)
	if err != nil {
		d.logger.Error("signal wait failed",
			"job", j.Name(),
			"channel", channel,
			"error", err)
		timedOut = true
	}

	if timedOut {
		elapsed := time.Since(start).Round(time.Millisecond)
		j.SetStatus(job.StatusWaitTimedOut)
		j.SetMessage(timeoutMessage(j, elapsed))
		if completionWait {
			d.hooks.EmitWaitTimedOut(ctx, j, elapsed)
		}
		d.logger.Warn("wait timed out",
			"job", j.Name(),
			"channel", channel,
			"waited", elapsed)
		return j.Status()
	}

	// A consumed channel is a spent channel.
	if err := d.signals.Unregister(ctx, channel); err != nil {
		d.logger.Warn("unregister channel failed",
			"channel", channel,
			"error", err)
	}

	if marker, message, ok := lockstep.Split(payload); ok {
		switch marker {
		case lockstep.MarkerCompleted:
			j.SetStatus(job.StatusCompleted)
		case lockstep.MarkerFailed:
			j.SetStatus(job.StatusFailed)
		}
		j.SetMessage(message)
	} else {
		// No delimiter: the whole payload is a message and the status
		// is whatever it already was.
		j.SetMessage(payload)
	}

	if completionWait {
		j.MarkCompleted()
		if j.Message() == "" {
			j.SetMessage("completed successfully")
		}
		switch j.Status() {
		case job.StatusCompleted:
			d.hooks.EmitJobCompleted(ctx, j, elapsedSinceSubmit(j))
		case job.StatusFailed:
			d.hooks.EmitJobFailed(ctx, j, j.Message())
		}
		d.logger.Info("job finished",
			"job", j.Name(),
			"status", j.Status(),
			"message", j.Message())
	}
	return j.Status()
}

// timeoutMessage synthesizes the message recorded when a wait expires.
func timeoutMessage(j *job.Job, elapsed time.Duration) string {
	return "wait timed out after " + elapsed.String() +
		" for job " + j.Name() +
		" (" + lockstep.PreviewCommand(j.Command()) + ")"
}

func elapsedSinceSubmit(j *job.Job) time.Duration {
	if j.SubmittedAt() == nil || j.CompletedAt() == nil {
		return 0
	}
	return j.CompletedAt().Sub(*j.SubmittedAt())
}
