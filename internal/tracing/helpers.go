// Package tracing provides OpenTelemetry span helpers for the ranking
// engine. Exporter wiring belongs to embedding applications; this
// package only speaks the otel API.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this library's tracer.
const tracerName = "chirpfeed/engine"

// StartRankSpan creates a new span for one feed ranking pass.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartRankSpan(ctx, viewerID, len(candidates))
//	defer endSpan(err)
//	// ... rank candidates ...
func StartRankSpan(ctx context.Context, viewerID string, candidateCount int) (context.Context, func(error)) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "feed.rank",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("feed.viewer_id", viewerID),
			attribute.Int("feed.candidate_count", candidateCount),
		),
	)

	return ctx, endFunc(span)
}

// StartCompileSpan creates a new span for one instruction compilation.
// Returns the new context and a function to end the span.
func StartCompileSpan(ctx context.Context, instructionLen int) (context.Context, func(error)) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "instruction.compile",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("instruction.length", instructionLen),
		),
	)

	return ctx, endFunc(span)
}

// StartSpan creates a new span for a general engine operation.
// Returns the new context and a function to end the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return ctx, endFunc(span)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}

// endFunc returns the span-ending closure shared by all helpers.
// A non-nil error marks the span as failed before ending it.
func endFunc(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
