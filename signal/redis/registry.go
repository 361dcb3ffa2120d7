// Package redis implements signal.Registry on Redis, for rendezvous
// between processes. Channel registration is a marker key; the newest
// unconsumed signal lives in a payload key that each new signal
// overwrites and GETDEL consumes atomically.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	reg := sigredis.New(client)
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reko-labs/lockstep/signal"
)

// Compile-time interface check.
var _ signal.Registry = (*Registry)(nil)

// pollInterval is how often WaitOne re-checks the payload key. The same
// cadence the event subscription path uses elsewhere; short enough that
// rendezvous latency is negligible next to command runtimes.
const pollInterval = 50 * time.Millisecond

// record is the stored signal envelope.
type record struct {
	Payload    string    `msgpack:"payload"`
	SignaledAt time.Time `msgpack:"signaled_at"`
}

// Registry is a Redis-backed signal.Registry.
type Registry struct {
	client goredis.UniversalClient
	logger *slog.Logger
	prefix string
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithKeyPrefix overrides the default "lockstep" key prefix.
func WithKeyPrefix(p string) Option {
	return func(r *Registry) { r.prefix = p }
}

// New creates a Registry on an existing Redis client.
func New(client goredis.UniversalClient, opts ...Option) *Registry {
	r := &Registry{
		client: client,
		logger: slog.Default(),
		prefix: "lockstep",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) regKey(name string) string { return r.prefix + ":chan:" + name }
func (r *Registry) sigKey(name string) string { return r.prefix + ":sig:" + name }

// Register marks the channel as eligible to receive signals.
func (r *Registry) Register(ctx context.Context, name string) error {
	if err := r.client.Set(ctx, r.regKey(name), "1", 0).Err(); err != nil {
		return fmt.Errorf("lockstep/redis: register %q: %w", name, err)
	}
	return nil
}

// Signal stores the payload under the channel's signal key, overwriting
// any unconsumed older payload. Unregistered channels drop the signal.
func (r *Registry) Signal(ctx context.Context, name, payload string) error {
	exists, err := r.client.Exists(ctx, r.regKey(name)).Result()
	if err != nil {
		return fmt.Errorf("lockstep/redis: signal %q: %w", name, err)
	}
	if exists == 0 {
		return nil
	}

	data, err := msgpack.Marshal(record{Payload: payload, SignaledAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("lockstep/redis: encode signal for %q: %w", name, err)
	}

	if err := r.client.Set(ctx, r.sigKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("lockstep/redis: signal %q: %w", name, err)
	}
	return nil
}

// WaitOne polls the signal key until a payload is consumable or the
// timeout elapses. GETDEL makes consumption atomic across competing
// readers. Context cancellation is reported as a timeout.
func (r *Registry) WaitOne(ctx context.Context, name string, timeout time.Duration) (string, bool, error) {
	deadline := time.Now().Add(timeout)
	key := r.sigKey(name)

	for {
		select {
		case <-ctx.Done():
			return "", true, nil
		default:
		}

		if time.Now().After(deadline) {
			return "", true, nil
		}

		data, err := r.client.GetDel(ctx, key).Bytes()
		switch {
		case err == nil:
			var rec record
			if decErr := msgpack.Unmarshal(data, &rec); decErr != nil {
				return "", false, fmt.Errorf("lockstep/redis: decode signal on %q: %w", name, decErr)
			}
			return rec.Payload, false, nil
		case errors.Is(err, goredis.Nil):
			// No signal yet.
		default:
			return "", false, fmt.Errorf("lockstep/redis: wait on %q: %w", name, err)
		}

		wait := pollInterval
		if remaining := time.Until(deadline); wait > remaining {
			wait = remaining
		}
		sleepCtx(ctx, wait)
	}
}

// Unregister removes the channel marker and drops any unconsumed signal.
func (r *Registry) Unregister(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.regKey(name), r.sigKey(name)).Err(); err != nil {
		return fmt.Errorf("lockstep/redis: unregister %q: %w", name, err)
	}
	return nil
}

// sleepCtx sleeps for the given duration, or returns early if the context
// is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
