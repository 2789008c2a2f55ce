package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, trace.Tracer) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp.Tracer("test")
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	rec, tracer := newRecorder(t)

	ctx, parent := StartSpan(context.Background(), tracer, "sweep",
		trace.WithAttributes(AttrTenantID.String("t-1"), AttrForce.Bool(true)))
	_, child := StartSpan(ctx, tracer, "lookup", trace.WithAttributes(AttrVehicleID.String("v-9")))
	child.End()
	parent.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "lookup", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Contains(t, ended[1].Attributes(), AttrTenantID.String("t-1"))
	assert.Contains(t, ended[1].Attributes(), AttrForce.Bool(true))
}

func TestStartSpan_NilTracerKeepsParent(t *testing.T) {
	t.Parallel()

	rec, tracer := newRecorder(t)
	ctx, parent := tracer.Start(context.Background(), "request")

	got, span := StartSpan(ctx, nil, "ignored")
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	// ending the placeholder must leave the request span open
	span.End()
	assert.Empty(t, rec.Ended())
	assert.True(t, trace.SpanFromContext(got).IsRecording())

	parent.End()
	assert.Len(t, rec.Ended(), 1)
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvents int
	}{
		{name: "error marks span failed", err: errors.New("registry unavailable"), wantStatus: codes.Error, wantEvents: 1},
		{name: "nil error is ignored", err: nil, wantStatus: codes.Unset, wantEvents: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, tracer := newRecorder(t)
			_, span := tracer.Start(context.Background(), "lookup")
			RecordError(span, tt.err)
			span.End()

			ended := rec.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tt.wantStatus, ended[0].Status().Code)
			assert.Len(t, ended[0].Events(), tt.wantEvents)
			if tt.err != nil {
				// the raw error stays out of the status description
				assert.Equal(t, "operation failed", ended[0].Status().Description)
			}
		})
	}
}

func TestRecordError_NilSpan(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })
}
