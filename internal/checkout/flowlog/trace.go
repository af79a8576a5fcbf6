package flowlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds an Entry with trace_id/span_id taken from the span active
// in ctx. Outside an instrumented call path (unit tests) both come back
// empty, which the schema tolerates.
func NewEntry(ctx context.Context, flowID, orderID string, status Status, detail string) *Entry {
	e := &Entry{
		FlowID:    flowID,
		OrderID:   orderID,
		Status:    status,
		Detail:    detail,
		UpdatedAt: time.Now().UTC(),
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
