// Package flowlog defines the audit trail for checkout flow executions.
//
// Every transition of a flow — order created, payment surface opened, surface
// closed, terminal resolution — is appended as an immutable row. The log is
// the ground truth when a user reports "I paid but the order shows cancelled":
// it shows exactly which path resolved the order and when, correlated with
// the distributed trace via the trace_id column.
package flowlog

import "time"

// Status is the lifecycle state of one checkout flow execution.
type Status string

const (
	StatusStarted          Status = "STARTED"
	StatusOrderCreated     Status = "ORDER_CREATED"
	StatusSurfaceOpened    Status = "SURFACE_OPENED"
	StatusSurfaceClosed    Status = "SURFACE_CLOSED"
	StatusResolvedPaid     Status = "RESOLVED_PAID"
	StatusResolvedCanceled Status = "RESOLVED_CANCELED"
	StatusResolvedError    Status = "RESOLVED_ERROR"
	StatusResolvedExternal Status = "RESOLVED_EXTERNAL"
	StatusAborted          Status = "ABORTED"
)

// Entry is a single row in the flow_logs table: a point-in-time snapshot of
// one checkout flow.
type Entry struct {
	// FlowID identifies one flow execution. Assigned by the client before
	// the order exists, so aborted flows are logged too.
	FlowID string

	// OrderID is the server-assigned order, empty until ORDER_CREATED.
	OrderID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// Detail carries human-readable context: the failure message on ABORTED
	// rows, the resolving path on terminal rows.
	Detail string

	// TraceID / SpanID come from the OpenTelemetry span active when the row
	// was written, so a log row can be joined with the full trace.
	TraceID string
	SpanID  string

	// UpdatedAt is the wall-clock time of this transition.
	UpdatedAt time.Time
}
