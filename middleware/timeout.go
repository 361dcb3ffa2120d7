package middleware

import (
	"context"
	"time"

	"github.com/reko-labs/lockstep"
)

// Timeout returns middleware that enforces an execution deadline on the
// command. When the deadline is exceeded the context is cancelled and
// the runner should return context.DeadlineExceeded. Zero disables the
// deadline and the middleware becomes a pass-through.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ lockstep.Invocation, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
