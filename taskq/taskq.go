// Package taskq defines the task-queue capability: an external engine
// that accepts opaque command text, runs it on its own background workers
// at its own cadence, and can drop queued-but-not-yet-started entries.
// The in-process engine lives in the memory subpackage.
package taskq

import (
	"context"

	"github.com/reko-labs/lockstep/id"
)

// Queue is the task-queue engine capability.
type Queue interface {
	// Enqueue accepts a command for background execution and returns
	// the engine's identity for the queued task.
	Enqueue(ctx context.Context, command string) (id.TaskID, error)

	// RemoveQueuedByCommandText removes queued entries carrying exactly
	// the given command text. Entries hold encoded invocations, whose
	// first field is the caller's command verbatim, so a match is the
	// whole entry or the entry's leading field. Best-effort: entries
	// already started are untouched. Returns the number removed.
	RemoveQueuedByCommandText(ctx context.Context, command string) (int, error)
}
