package job

import (
	"time"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/id"
)

// Options configures per-job behavior at construction time.
type Options struct {
	description string
	waitTimeout time.Duration
	seq         *id.Sequence
}

func defaultOptions() Options {
	return Options{
		waitTimeout: lockstep.DefaultConfig().WaitTimeout,
	}
}

// Option is a functional option for configuring a Job.
type Option func(*Options)

// WithDescription attaches free-text documentation to the job.
func WithDescription(d string) Option {
	return func(o *Options) { o.description = d }
}

// WithWaitTimeout overrides the default completion-wait timeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *Options) { o.waitTimeout = d }
}

// WithSequence sources the handle's sequence number from the given
// Sequence instead of the process-wide one. Lets tests control handle
// generation deterministically.
func WithSequence(s *id.Sequence) Option {
	return func(o *Options) { o.seq = s }
}
