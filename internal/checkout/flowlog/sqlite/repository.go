// Package sqlite provides the SQLite-backed flowlog.Repository.
//
// WAL mode is enabled on Open so readers never block the writer: the flow
// goroutine appends while an operator query may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mskang/shopfront-checkout/internal/checkout/flowlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO, so
	// the binary cross-compiles and runs on Alpine without a toolchain.
	_ "modernc.org/sqlite"
)

// schema is applied once on startup. Append-only: each row is an immutable
// event; MAX(updated_at) per flow_id gives the current state.
const schema = `
CREATE TABLE IF NOT EXISTS flow_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Client-assigned flow execution ID (UUID). Present from the first row,
    -- so flows aborted before order creation are still visible.
    flow_id     TEXT NOT NULL,

    -- Server-assigned order ID. Empty until the ORDER_CREATED transition.
    order_id    TEXT NOT NULL DEFAULT '',

    status      TEXT NOT NULL,

    -- Free-text context: abort reason, resolving path, clamp warnings.
    detail      TEXT NOT NULL DEFAULT '',

    -- W3C identifiers of the OTel span active when the row was written.
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    -- RFC3339 TEXT, the SQLite idiom for timestamps.
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flow_logs_flow_id  ON flow_logs(flow_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_flow_logs_order_id ON flow_logs(order_id);
`

// Repository is the SQLite implementation of flowlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	// _pragma query parameters configure per-connection state for the
	// modernc driver. busy_timeout waits on locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a flow log row. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *flowlog.Entry) error {
	const q = `
		INSERT INTO flow_logs
			(flow_id, order_id, status, detail, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.FlowID,
		entry.OrderID,
		string(entry.Status),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save flow log for %q: %w", entry.FlowID, err)
	}
	return nil
}

// GetLatest returns the most recent entry for a flow. Used by the status
// query path and by tests asserting terminal states.
func (r *Repository) GetLatest(ctx context.Context, flowID string) (*flowlog.Entry, error) {
	const q = `
		SELECT flow_id, order_id, status, detail, trace_id, span_id, updated_at
		FROM   flow_logs
		WHERE  flow_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, flowID)

	var entry flowlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.FlowID,
		&entry.OrderID,
		&entry.Status,
		&entry.Detail,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: flow %q not found", flowID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", flowID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
