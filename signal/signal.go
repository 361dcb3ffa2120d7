// Package signal defines the named broadcast-channel capability the
// submit/wait rendezvous runs on. Delivery semantics are deliberate and
// narrow: a signal reaches only channels that are currently registered,
// the newest unconsumed signal per channel overwrites older ones, and a
// signal to an unregistered channel is silently dropped.
//
// In-memory, Redis, and Postgres implementations live in the memory,
// redis, and postgres subpackages.
package signal

import (
	"context"
	"time"
)

// Registry is the named broadcast-channel capability.
type Registry interface {
	// Register makes the channel eligible to receive signals. It must
	// complete before a signal is sent or the signal is lost.
	// Registering an already-registered channel is a no-op.
	Register(ctx context.Context, name string) error

	// Signal delivers a payload to the channel. If the channel is not
	// registered the signal is silently dropped. A newer signal
	// overwrites an unconsumed older one.
	Signal(ctx context.Context, name, payload string) error

	// WaitOne blocks until a signal arrives on the channel or the
	// timeout elapses, consuming the signal it returns. The channel
	// stays registered either way; consuming and unregistering are
	// separate steps.
	WaitOne(ctx context.Context, name string, timeout time.Duration) (payload string, timedOut bool, err error)

	// Unregister removes the channel. Any unconsumed signal is dropped.
	Unregister(ctx context.Context, name string) error
}
