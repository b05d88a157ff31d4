package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrNoRows       = errors.New("db: no rows")
	ErrInvalidQuery = errors.New("db: invalid query")
)

// Op constants name the failing statement kind for error context.
const (
	OpPing        = "PING"
	OpSelect      = "SELECT"
	OpCount       = "COUNT"
	OpInsert      = "INSERT"
	OpDelete      = "DELETE"
	OpTableExists = "TABLE_EXISTS"
	OpMigrate     = "MIGRATE"
	OpXGroup      = "XGROUP"
	OpXReadGroup  = "XREADGROUP"
	OpXAck        = "XACK"
	OpXAdd        = "XADD"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
