// Package worker implements the entry point the task-queue engine
// invokes for each submitted job. It is the execution boundary: the only
// place arbitrary caller-supplied command text runs. Execution is
// bracketed by signals — receipt before the command starts, completion
// after it finishes — and every failure is caught and converted into a
// completion payload so the caller's wait never hangs uninformed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/middleware"
	"github.com/reko-labs/lockstep/signal"
)

// Runner executes a single command. Implementations decide what command
// text means: a SQL statement, a shell invocation, a procedure lookup.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, command string) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, command string) error {
	return f(ctx, command)
}

// Worker binds a Runner to a signal registry and a middleware chain.
type Worker struct {
	runner  Runner
	signals signal.Registry
	logger  *slog.Logger
	chain   middleware.Middleware
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger used for execution events.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMiddleware wraps command execution with the given middleware,
// outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(w *Worker) {
		w.chain = middleware.Chain(mws...)
	}
}

// New constructs a Worker around the given runner and signal registry.
func New(runner Runner, signals signal.Registry, opts ...Option) *Worker {
	w := &Worker{
		runner:  runner,
		signals: signals,
		logger:  slog.Default(),
		chain:   middleware.Chain(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute runs one invocation: signal receipt, run the command through
// the middleware chain, signal completion. The command's own failure is
// captured into the completion payload, never returned — an error
// escaping this boundary would leave the completion channel unsignaled
// and the caller's wait would time out with no explanation.
func (w *Worker) Execute(ctx context.Context, inv lockstep.Invocation) error {
	// Receipt first: it confirms pickup, not progress. Nothing has run
	// yet when this fires.
	if err := w.signals.Signal(ctx, inv.ReceiptChannel, lockstep.MarkerInProgress); err != nil {
		return fmt.Errorf("signal receipt channel %q: %w", inv.ReceiptChannel, err)
	}

	runErr := w.chain(ctx, inv, func(ctx context.Context) (err error) {
		// A panic here must become a completion payload, with or
		// without the Recover middleware installed.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return w.runner.Run(ctx, inv.Command)
	})

	var payload string
	if runErr != nil {
		payload = lockstep.Pack(lockstep.MarkerFailed, runErr.Error())
		w.logger.Error("command failed",
			"channel", inv.CompletedChannel,
			"session", inv.Session,
			"error", runErr)
	} else {
		payload = lockstep.Pack(lockstep.MarkerCompleted, lockstep.MarkerCompleted)
	}

	if err := w.signals.Signal(ctx, inv.CompletedChannel, payload); err != nil {
		return fmt.Errorf("signal completion channel %q: %w", inv.CompletedChannel, err)
	}
	return nil
}

// Entrypoint returns the function a task-queue engine invokes with the
// encoded invocation text. The returned function errors only on a
// malformed invocation or a signaling fault; command failures are
// absorbed by Execute.
func Entrypoint(runner Runner, signals signal.Registry, opts ...Option) func(ctx context.Context, text string) error {
	w := New(runner, signals, opts...)
	return func(ctx context.Context, text string) error {
		inv, err := lockstep.ParseInvocation(text)
		if err != nil {
			w.logger.Error("rejecting invocation", "error", err)
			return err
		}
		return w.Execute(ctx, inv)
	}
}
