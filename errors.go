package musq

import (
	"errors"
	"fmt"

	"github.com/cortesi/musq/internal/core"
)

// Sentinel errors for musq's non-parametric error kinds.
var (
	// ErrRowNotFound is returned by FetchOne when the result stream is empty.
	ErrRowNotFound = errors.New("musq: row not found")
	// ErrPoolClosed is returned by pool operations once the pool has closed.
	ErrPoolClosed = errors.New("musq: pool is closed")
	// ErrPoolTimedOut is returned when acquiring a connection exceeds the
	// configured acquire timeout.
	ErrPoolTimedOut = errors.New("musq: pool timed out waiting for a connection")
	// ErrWorkerCrashed is returned by every subsequent operation on a
	// Connection whose Worker goroutine terminated unexpectedly.
	ErrWorkerCrashed = errors.New("musq: connection worker crashed")
	// ErrUnlockNotifyExhausted is returned when the BUSY/LOCKED retry budget
	// is exceeded without the lock clearing.
	ErrUnlockNotifyExhausted = errors.New("musq: unlock-notify retry budget exhausted")
)

// ProtocolError is a caller-visible misuse detectable in musq code itself:
// malformed parameter names, out-of-range bind indices, unsupported
// parameter prefixes, empty inputs to builder helpers that require
// non-empty input, and similar.
type ProtocolError = core.ProtocolError

// ColumnNotFoundError is raised by Row accessors when an index or name does
// not resolve to a column.
type ColumnNotFoundError = core.ColumnNotFoundError

// DecodeError is raised when decoding a single column value into a Go type
// fails; it carries the offending column's position and the source error.
type DecodeError struct {
	Index  int
	Name   string
	Value  Value
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("musq: decode error: column %d (%s): %v", e.Index, e.Name, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Reason }

// EncodeError is raised when an argument could not be encoded into a Value.
type EncodeError struct {
	Reason error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("musq: encode error: %v", e.Reason) }

func (e *EncodeError) Unwrap() error { return e.Reason }

// DatabaseError wraps a native SQLite error: primary result code, extended
// result code, and textual message, passed through unmodified from the
// engine. Primary/Extended follow SQLite's own numbering
// (https://sqlite.org/rescode.html); the low byte of Extended equals
// Primary.
type DatabaseError struct {
	Primary  int
	Extended int
	Message  string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("musq: database error (code=%d, extended=%d): %s", e.Primary, e.Extended, e.Message)
}

// newDatabaseError builds a DatabaseError. musq does not pre-enumerate every
// SQLite result code as a Go sentinel; only a handful (BUSY, LOCKED,
// LOCKED_SHAREDCACHE, MISUSE) require special-cased handling inside the
// engine, and callers needing finer-grained checks can inspect
// Primary/Extended directly.
func newDatabaseError(primary, extended int, message string) *DatabaseError {
	return &DatabaseError{Primary: primary, Extended: extended, Message: message}
}
