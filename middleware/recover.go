package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/reko-labs/lockstep"
)

// Recover returns middleware that recovers from panics in the handler
// chain. Panics are converted to errors and logged with a stack trace.
// This is what keeps a crashing command from ever leaving the completion
// channel unsignaled.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv lockstep.Invocation, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("command panicked",
					slog.String("channel", inv.CompletedChannel),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic running command: %v", r)
			}
		}()
		return next(ctx)
	}
}
