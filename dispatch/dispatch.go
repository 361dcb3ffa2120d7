package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/hook"
	"github.com/reko-labs/lockstep/id"
	"github.com/reko-labs/lockstep/signal"
	"github.com/reko-labs/lockstep/taskq"
)

// Dispatcher submits jobs to a task queue and rendezvouses with the
// workers that execute them. One Dispatcher serves one session; the
// session identity travels inside every invocation for observability.
type Dispatcher struct {
	queue   taskq.Queue
	signals signal.Registry
	logger  *slog.Logger
	cfg     lockstep.Config
	hooks   *hook.Registry
	session id.SessionID

	// Extensions accumulated by options; folded into hooks once the
	// final logger is known.
	pendingExts []hook.Extension
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueue sets the task-queue engine that runs submitted work.
func WithQueue(q taskq.Queue) Option {
	return func(d *Dispatcher) {
		d.queue = q
	}
}

// WithSignals sets the signal registry used for the rendezvous.
func WithSignals(r signal.Registry) Option {
	return func(d *Dispatcher) {
		d.signals = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithConfig replaces the whole timing configuration.
func WithConfig(cfg lockstep.Config) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithConfirmTimeout overrides how long Submit waits for the worker's
// receipt signal. Zero restores the default of twice the queue's
// polling interval.
func WithConfirmTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.cfg.ConfirmTimeout = timeout
	}
}

// WithExtension registers a lifecycle extension.
func WithExtension(e hook.Extension) Option {
	return func(d *Dispatcher) {
		d.pendingExts = append(d.pendingExts, e)
	}
}

// New creates a Dispatcher. A queue and a signal registry must be
// supplied via options before Submit is called.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.Default(),
		cfg:     lockstep.DefaultConfig(),
		session: id.NewSessionID(),
	}
	for _, opt := range opts {
		opt(d)
	}

	// The registry is created only after the options ran so hook errors
	// log through the configured logger.
	d.hooks = hook.NewRegistry(d.logger)
	for _, e := range d.pendingExts {
		d.hooks.Register(e)
	}
	d.pendingExts = nil
	return d
}

// Session returns the dispatcher's session identity.
func (d *Dispatcher) Session() id.SessionID { return d.session }

// Extensions exposes the hook registry, mainly for late registration.
func (d *Dispatcher) Extensions() *hook.Registry { return d.hooks }

// Shutdown notifies extensions that the dispatcher is going away.
// Registered channels and queued work are left as they are; abandoned
// invocations eventually signal channels nobody reads.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.hooks.EmitShutdown(ctx)
}
