package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Reader
	Writer
	SchemaInspector
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reader runs filtered, sorted, paginated scans.
type Reader interface {
	Select(ctx context.Context, q *Select) ([]Row, error)
	// Count returns the number of rows q matches, ignoring its order and window.
	Count(ctx context.Context, q *Select) (int, error)
}

// InsertMode selects how duplicate keys are handled.
type InsertMode int

// Insert modes.
const (
	InsertPlain InsertMode = iota
	// InsertIgnore skips rows whose unique key already exists.
	InsertIgnore
	// InsertReplace deletes conflicting rows before inserting.
	InsertReplace
)

// Writer applies row mutations.
type Writer interface {
	// Insert writes rows sharing the first row's column set and returns the
	// number of rows inserted.
	Insert(ctx context.Context, table string, rows []Row, mode InsertMode) (int64, error)
	// Delete removes rows matching all conditions. No conditions deletes all rows.
	Delete(ctx context.Context, table string, where ...Cond) (int64, error)
}

// SchemaInspector reports on the schema.
type SchemaInspector interface {
	TableExists(ctx context.Context, name string) (bool, error)
}
