package dispatch

import (
	"context"
	"fmt"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/job"
)

// Submit hands the job's command to the task queue and blocks until a
// worker confirms pickup on the receipt channel. On return the job is
// InProgress; completion is observed separately via Wait.
//
// Error paths leave the job's status and message inspectable: a caller
// that gets an error back can still read what state the submission
// reached.
func (d *Dispatcher) Submit(ctx context.Context, j *job.Job) error {
	if j == nil || j.Command() == "" {
		return fmt.Errorf("dispatch: submit: %w", lockstep.ErrMissingCommand)
	}
	if j.Handle() == "" {
		return fmt.Errorf("dispatch: submit %q: %w", j.Name(), lockstep.ErrMissingHandle)
	}

	receiptChannel := j.ReceiptChannel()
	inv := lockstep.Invocation{
		Command:          j.Command(),
		ReceiptChannel:   receiptChannel,
		CompletedChannel: j.Handle(),
		Session:          d.session.String(),
	}

	// A repeated submit of the same command must not execute twice.
	// Queued-but-unstarted duplicates are withdrawn first.
	removed, err := d.queue.RemoveQueuedByCommandText(ctx, j.Command())
	if err != nil {
		d.logger.Warn("dedup sweep failed",
			"job", j.Name(),
			"error", err)
	} else if removed > 0 {
		d.logger.Info("removed queued duplicates",
			"job", j.Name(),
			"count", removed)
	}

	// Both channels must be externally visible before the worker can
	// possibly start, or its signals are lost.
	if err := d.signals.Register(ctx, receiptChannel); err != nil {
		return fmt.Errorf("dispatch: submit %q: register receipt channel: %w", j.Name(), err)
	}
	if err := d.signals.Register(ctx, j.Handle()); err != nil {
		return fmt.Errorf("dispatch: submit %q: register completion channel: %w", j.Name(), err)
	}

	j.MarkSubmitted()
	taskID, err := d.queue.Enqueue(ctx, inv.Encode())
	if err != nil {
		j.SetStatus(job.StatusSubmitFailed)
		j.SetMessage(err.Error())
		return fmt.Errorf("dispatch: submit %q (%s): %w: %v",
			j.Name(), lockstep.PreviewCommand(j.Command()), lockstep.ErrEnqueueFailed, err)
	}
	j.SetTaskID(taskID)
	j.SetStatus(job.StatusSubmitted)
	d.hooks.EmitJobSubmitted(ctx, j)

	d.logger.Debug("job enqueued",
		"job", j.Name(),
		"handle", j.Handle(),
		"task_id", taskID,
		"session", d.session)

	// Confirmation wait: the worker signals the receipt channel the
	// moment it picks the task up, before running anything.
	confirmTimeout := d.cfg.EffectiveConfirmTimeout()
	j.SetStatus(job.StatusWaitingConfirm)
	status := d.waitOn(ctx, j, receiptChannel, confirmTimeout)

	// The receipt channel is single-use.
	if err := d.signals.Unregister(ctx, receiptChannel); err != nil {
		d.logger.Warn("unregister receipt channel failed",
			"channel", receiptChannel,
			"error", err)
	}

	if status == job.StatusWaitTimedOut {
		d.hooks.EmitWaitTimedOut(ctx, j, confirmTimeout)
		return fmt.Errorf("dispatch: submit %q: %w: no start confirmation within %s",
			j.Name(), lockstep.ErrStartTimeout, confirmTimeout)
	}

	j.MarkStarted()
	j.SetStatus(job.StatusInProgress)
	d.hooks.EmitJobStarted(ctx, j)
	return nil
}
