// Package otel holds small tracing helpers shared by the sync pipeline.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on pipeline spans.
const (
	AttrTenantID     = attribute.Key("vehicle.tenant_id")
	AttrVehicleID    = attribute.Key("vehicle.id")
	AttrRegistration = attribute.Key("vehicle.registration")
	AttrForce        = attribute.Key("sweep.force")
	AttrBatchSize    = attribute.Key("sweep.batch_size")
	AttrCandidates   = attribute.Key("sweep.candidates")
	AttrOutcome      = attribute.Key("lookup.outcome")
)

// StartSpan starts a span on tracer. With a nil tracer it returns ctx
// unchanged and a non-recording span, so ending it never ends a parent span
// started by the HTTP middleware.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. The status text is
// generic; the error itself is kept in the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
