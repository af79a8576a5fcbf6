package flowlog

import "context"

// Repository is the port for persisting flow log entries. The checkout flow
// depends on this abstraction, not on SQLite directly, so tests can use an
// in-memory recorder.
type Repository interface {
	// Save appends a row. The log is append-only, never upserted.
	Save(ctx context.Context, entry *Entry) error
}

// Nop discards entries. Used when no flow log path is configured.
type Nop struct{}

func (Nop) Save(context.Context, *Entry) error { return nil }
