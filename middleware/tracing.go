package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reko-labs/lockstep"
)

// tracerName is the instrumentation scope name for lockstep tracing.
const tracerName = "github.com/reko-labs/lockstep"

// Tracing returns middleware that wraps command execution in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: lockstep.channel, lockstep.receipt_channel,
// lockstep.session. On error, the span status is set to codes.Error with
// the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, inv lockstep.Invocation, next Handler) error {
		ctx, span := tracer.Start(ctx, "lockstep.command.execute",
			trace.WithAttributes(
				attribute.String("lockstep.channel", inv.CompletedChannel),
				attribute.String("lockstep.receipt_channel", inv.ReceiptChannel),
				attribute.String("lockstep.session", inv.Session),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
