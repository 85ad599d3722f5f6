package engine

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	sqlite "modernc.org/sqlite"
)

// Primary SQLite result codes this package special-cases, enough to drive
// the step retry FSM; the full code space is preserved verbatim in
// SqliteError.Primary/Extended for callers that need it.
const (
	codeBusy             = 5
	codeLocked           = 6
	codeMisuse           = 21
	codeRow              = 100
	codeDone             = 101
	codeLockedSharedCache = codeLocked | (1 << 8) // SQLITE_LOCKED_SHAREDCACHE
)

// SqliteError is the engine-level representation of a database error:
// primary code, extended code, and textual message, passed through from
// the native engine.
type SqliteError struct {
	Primary  int
	Extended int
	Message  string
}

func (e *SqliteError) Error() string {
	return fmt.Sprintf("sqlite error (code=%d, extended=%d): %s", e.Primary, e.Extended, e.Message)
}

// translateError converts whatever database/sql/modernc handed back into a
// *SqliteError, preserving the underlying error if it is not a recognisable
// SQLite result code (e.g. context cancellation).
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		extended := se.Code()
		return &SqliteError{Primary: extended & 0xff, Extended: extended, Message: se.Error()}
	}
	return pkgerrors.WithStack(err)
}

func isBusy(primary int) bool   { return primary == codeBusy }
func isLocked(primary int) bool { return primary == codeLocked }
func isMisuse(primary int) bool { return primary == codeMisuse }
