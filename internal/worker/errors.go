package worker

import "errors"

// ErrCrashed is returned by every Worker method once its goroutine has
// exited, whether from a clean Shutdown or an unrecoverable compensation
// failure during an orphaned-transaction rollback.
var ErrCrashed = errors.New("musq: connection worker crashed")
