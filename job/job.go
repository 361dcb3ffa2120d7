// Package job defines the Job entity: a single unit of asynchronous work
// with a derived channel identity, a forward-only state machine, and the
// timestamps of its trip through submit, start, and completion.
package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/id"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusNotSubmitted means the job has been constructed but not handed
	// to the task queue.
	StatusNotSubmitted Status = "not_submitted"
	// StatusSubmitted means the job is enqueued but the worker has not yet
	// confirmed picking it up.
	StatusSubmitted Status = "submitted"
	// StatusWaitingConfirm means a wait is blocked on one of the job's
	// channels.
	StatusWaitingConfirm Status = "waiting_confirm"
	// StatusInProgress means the worker confirmed receipt and is running
	// the command.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the command finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed means the command failed; the error text is in Message.
	StatusFailed Status = "failed"
	// StatusWaitTimedOut means a wait exceeded its timeout. Not fatal:
	// the caller may wait again and a late signal is still consumable.
	StatusWaitTimedOut Status = "wait_timed_out"
	// StatusSubmitFailed means dispatch itself could not be completed.
	StatusSubmitFailed Status = "submit_failed"
)

// Job is one unit of asynchronous work. A Job is single-owner: one
// goroutine constructs it, submits it, and waits on it. The handle and
// command are immutable after construction; everything else is mutated by
// the dispatcher as the job moves through its lifecycle.
type Job struct {
	name        string
	handle      string
	command     string
	description string
	message     string
	waitTimeout time.Duration
	status      Status
	taskID      id.TaskID

	createdAt   time.Time
	submittedAt *time.Time
	startedAt   *time.Time
	completedAt *time.Time
}

// New constructs a Job in the not_submitted state. The name is a human
// label of at most 30 characters; the command is the opaque instruction
// the worker will run. The handle is derived from the name and a
// process-wide sequence, so repeated names still yield unique handles.
func New(name, command string, opts ...Option) (*Job, error) {
	if command == "" {
		return nil, lockstep.ErrMissingCommand
	}
	if len(name) > lockstep.MaxNameLen {
		return nil, fmt.Errorf("%w: %q is %d characters", lockstep.ErrNameTooLong, name, len(name))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var handle string
	if o.seq != nil {
		handle = id.NewHandle(name, o.seq.Next())
	} else {
		handle = id.NextHandle(name)
	}

	return &Job{
		name:        name,
		handle:      handle,
		command:     command,
		description: o.description,
		waitTimeout: o.waitTimeout,
		status:      StatusNotSubmitted,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Name returns the caller-supplied label.
func (j *Job) Name() string { return j.name }

// Handle returns the derived unique identity. It doubles as the job's
// completion-channel name.
func (j *Job) Handle() string { return j.handle }

// ReceiptChannel returns the channel the worker signals on pickup.
func (j *Job) ReceiptChannel() string { return j.handle + lockstep.ReceiptSuffix }

// Command returns the instruction the worker runs.
func (j *Job) Command() string { return j.command }

// Description returns the optional free-text description.
func (j *Job) Description() string { return j.description }

// Message returns the last status message or error text from the worker.
func (j *Job) Message() string { return j.message }

// WaitTimeout returns the default timeout for completion waits.
func (j *Job) WaitTimeout() time.Duration { return j.waitTimeout }

// Status returns the current lifecycle state.
func (j *Job) Status() Status { return j.status }

// TaskID returns the identity assigned by the task queue, or the nil ID
// if submission never reached the enqueue step.
func (j *Job) TaskID() id.TaskID { return j.taskID }

// CreatedAt returns the construction time.
func (j *Job) CreatedAt() time.Time { return j.createdAt }

// SubmittedAt returns when the job was handed to the task queue, or nil.
func (j *Job) SubmittedAt() *time.Time { return j.submittedAt }

// StartedAt returns when the worker confirmed receipt, or nil.
func (j *Job) StartedAt() *time.Time { return j.startedAt }

// CompletedAt returns when the completion signal arrived, or nil.
func (j *Job) CompletedAt() *time.Time { return j.completedAt }

// SetStatus records a state transition.
func (j *Job) SetStatus(s Status) { j.status = s }

// SetMessage records the latest worker or timeout message.
func (j *Job) SetMessage(m string) { j.message = m }

// SetTaskID records the identity returned by the task queue.
func (j *Job) SetTaskID(t id.TaskID) { j.taskID = t }

// MarkSubmitted stamps submittedAt. Set-once: later calls are no-ops.
func (j *Job) MarkSubmitted() {
	if j.submittedAt == nil {
		now := time.Now().UTC()
		j.submittedAt = &now
	}
}

// MarkStarted stamps startedAt. Set-once: later calls are no-ops.
func (j *Job) MarkStarted() {
	if j.startedAt == nil {
		now := time.Now().UTC()
		j.startedAt = &now
	}
}

// MarkCompleted stamps completedAt. Set-once: later calls are no-ops.
func (j *Job) MarkCompleted() {
	if j.completedAt == nil {
		now := time.Now().UTC()
		j.completedAt = &now
	}
}

// Describe returns a human-readable dump of the job, for debugging and
// demo output.
func (j *Job) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "job %s (%s)\n", j.handle, j.name)
	fmt.Fprintf(&b, "  status:       %s\n", j.status)
	fmt.Fprintf(&b, "  command:      %s\n", lockstep.PreviewCommand(j.command))
	if j.description != "" {
		fmt.Fprintf(&b, "  description:  %s\n", j.description)
	}
	if j.message != "" {
		fmt.Fprintf(&b, "  message:      %s\n", j.message)
	}
	if !j.taskID.IsNil() {
		fmt.Fprintf(&b, "  task:         %s\n", j.taskID)
	}
	fmt.Fprintf(&b, "  created:      %s\n", j.createdAt.Format(time.RFC3339Nano))
	for _, ts := range []struct {
		label string
		t     *time.Time
	}{
		{"submitted", j.submittedAt},
		{"started", j.startedAt},
		{"completed", j.completedAt},
	} {
		if ts.t != nil {
			fmt.Fprintf(&b, "  %-12s %s\n", ts.label+":", ts.t.Format(time.RFC3339Nano))
		}
	}
	return b.String()
}
