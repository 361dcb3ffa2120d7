// Package observability provides a ready-made hook extension that
// records job lifecycle metrics through OpenTelemetry. Register it on a
// dispatcher to track submission, start, completion, failure, and
// wait-timeout rates without writing any instrumentation yourself.
package observability
