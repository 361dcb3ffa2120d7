package lockstep

import "errors"

var (
	// Validation errors. Submit fails with these before any side effects.
	ErrMissingCommand = errors.New("lockstep: job has no command")
	ErrMissingHandle  = errors.New("lockstep: job has no handle")
	ErrNameTooLong    = errors.New("lockstep: job name exceeds 30 characters")

	// Dispatch errors.
	ErrEnqueueFailed = errors.New("lockstep: task queue rejected the job")
	ErrStartTimeout  = errors.New("lockstep: submitted task failed to start")

	// Invocation errors.
	ErrMalformedInvocation = errors.New("lockstep: malformed worker invocation")
)
