// Package memory is an in-process task-queue engine. Worker goroutines
// poll a FIFO of queued commands and run each through the engine's
// executor. It backs unit tests and single-process deployments; the
// dispatcher only ever sees the taskq.Queue capability.
package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/reko-labs/lockstep"
	"github.com/reko-labs/lockstep/id"
	"github.com/reko-labs/lockstep/taskq"
)

// Compile-time interface check.
var _ taskq.Queue = (*Engine)(nil)

// Executor runs one queued command. The worker entry point is the usual
// executor; see worker.Entrypoint.
type Executor func(ctx context.Context, command string) error

// entry is one queued command.
type entry struct {
	id         id.TaskID
	command    string
	enqueuedAt time.Time
}

// Engine is an in-process taskq.Queue that executes commands on its own
// worker goroutines.
type Engine struct {
	executor     Executor
	concurrency  int
	pollInterval time.Duration
	limiter      *rate.Limiter
	logger       *slog.Logger

	mu      sync.Mutex
	pending []*entry

	stopCh  chan struct{}
	wg      sync.WaitGroup
	runMu   sync.Mutex
	running bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithPollInterval sets how often idle workers re-check the queue.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// WithRateLimit caps sustained dequeues per second with a token bucket.
// Zero perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(e *Engine) {
		if perSecond <= 0 {
			e.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine that runs commands through the given executor.
func New(executor Executor, opts ...Option) *Engine {
	e := &Engine{
		executor:     executor,
		concurrency:  4,
		pollInterval: 50 * time.Millisecond,
		logger:       slog.Default(),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the worker goroutines. It returns immediately.
func (e *Engine) Start(_ context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return nil
	}
	e.running = true

	e.logger.Info("task engine starting",
		slog.Int("concurrency", e.concurrency),
		slog.Duration("poll_interval", e.pollInterval),
	)

	for range e.concurrency {
		e.wg.Add(1)
		go e.dequeueLoop()
	}
	return nil
}

// Stop signals all workers to stop and waits for them to finish. Active
// commands run to completion; if the context expires first, Stop returns
// its error and workers drain in the background.
func (e *Engine) Stop(ctx context.Context) error {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return nil
	}
	e.running = false
	e.runMu.Unlock()

	close(e.stopCh)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("task engine stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("task engine shutdown timed out")
		return ctx.Err()
	}
}

// Enqueue appends a command to the queue.
func (e *Engine) Enqueue(_ context.Context, command string) (id.TaskID, error) {
	ent := &entry{
		id:         id.NewTaskID(),
		command:    command,
		enqueuedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.pending = append(e.pending, ent)
	e.mu.Unlock()

	e.logger.Debug("task enqueued", slog.String("task_id", ent.id.String()))
	return ent.id, nil
}

// RemoveQueuedByCommandText drops pending entries whose command matches
// the given text exactly: the whole entry, or the leading field of an
// encoded invocation. A command that merely appears as a substring of
// another job's entry is someone else's work and stays queued. Entries a
// worker already claimed keep running.
func (e *Engine) RemoveQueuedByCommandText(_ context.Context, command string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.pending[:0]
	removed := 0
	for _, ent := range e.pending {
		if ent.command == command || strings.HasPrefix(ent.command, command+lockstep.Delim) {
			removed++
			continue
		}
		kept = append(kept, ent)
	}
	e.pending = kept

	if removed > 0 {
		e.logger.Debug("removed queued tasks", slog.Int("count", removed))
	}
	return removed, nil
}

// PendingCount returns the number of queued, not-yet-started entries.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// dequeueLoop is run by each worker goroutine.
func (e *Engine) dequeueLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		if e.limiter != nil && !e.limiter.Allow() {
			e.sleep()
			continue
		}

		ent := e.claim()
		if ent == nil {
			e.sleep()
			continue
		}

		e.logger.Debug("task started", slog.String("task_id", ent.id.String()))
		if err := e.executor(context.Background(), ent.command); err != nil {
			// The executor owns failure reporting; this is engine-side
			// diagnostics only.
			e.logger.Debug("task executor returned error",
				slog.String("task_id", ent.id.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// claim pops the oldest pending entry, or nil when the queue is empty.
func (e *Engine) claim() *entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil
	}
	ent := e.pending[0]
	e.pending = e.pending[1:]
	return ent
}

func (e *Engine) sleep() {
	select {
	case <-time.After(e.pollInterval):
	case <-e.stopCh:
	}
}
