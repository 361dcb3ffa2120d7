package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/reko-labs/lockstep"
)

// Logging returns middleware that logs command start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv lockstep.Invocation, next Handler) error {
		logger.Info("command started",
			slog.String("channel", inv.CompletedChannel),
			slog.String("session", inv.Session),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("command failed",
				slog.String("channel", inv.CompletedChannel),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("command completed",
				slog.String("channel", inv.CompletedChannel),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
