// Package memory is a fully in-memory signal.Registry. Safe for
// concurrent use. It is the default backend and the one unit tests run
// against.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/reko-labs/lockstep/signal"
)

// Compile-time interface check.
var _ signal.Registry = (*Registry)(nil)

// channel tracks one named channel: whether it is registered, the newest
// unconsumed payload, and a notify edge for a blocked waiter.
type channel struct {
	registered bool
	pending    *string
	notify     chan struct{}
}

// Registry is an in-memory signal.Registry.
type Registry struct {
	mu       sync.Mutex
	channels map[string]*channel
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{channels: make(map[string]*channel)}
}

// get returns the channel record, creating it if absent. Caller holds mu.
func (r *Registry) get(name string) *channel {
	c, ok := r.channels[name]
	if !ok {
		c = &channel{notify: make(chan struct{}, 1)}
		r.channels[name] = c
	}
	return c
}

// Register makes the channel eligible to receive signals.
func (r *Registry) Register(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.get(name).registered = true
	return nil
}

// Signal delivers a payload. Unregistered channels drop it silently
// without materializing a record; an unconsumed older payload is
// overwritten.
func (r *Registry) Signal(_ context.Context, name, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.channels[name]
	if !ok || !c.registered {
		return nil
	}

	p := payload
	c.pending = &p

	// Edge-trigger a blocked waiter. Buffer of one makes this lossless
	// for the single-reader case without blocking the signaler.
	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

// WaitOne blocks until a signal is consumable or the timeout elapses.
// Context cancellation is reported as a timeout so callers have a single
// "nothing arrived" outcome.
func (r *Registry) WaitOne(ctx context.Context, name string, timeout time.Duration) (string, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		r.mu.Lock()
		c := r.get(name)
		if c.registered && c.pending != nil {
			p := *c.pending
			c.pending = nil
			r.mu.Unlock()
			return p, false, nil
		}
		notify := c.notify
		r.mu.Unlock()

		select {
		case <-notify:
		case <-timer.C:
			r.dropIfIdle(name)
			return "", true, nil
		case <-ctx.Done():
			r.dropIfIdle(name)
			return "", true, nil
		}
	}
}

// dropIfIdle removes a record a timed-out wait materialized but nobody
// ever registered, so waits on unknown names don't grow the map.
func (r *Registry) dropIfIdle(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.channels[name]; ok && !c.registered && c.pending == nil {
		delete(r.channels, name)
	}
}

// Unregister removes the channel entirely; any unconsumed signal goes
// with it, and the record is freed.
func (r *Registry) Unregister(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.channels, name)
	return nil
}
