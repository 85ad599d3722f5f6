package engine

import (
	"context"
	"time"
)

// DefaultMaxRetries bounds the BUSY/LOCKED retry loop in Step.
const DefaultMaxRetries = 50

// waitForUnlock blocks until the shared-cache lock that produced a
// BUSY/LOCKED result is likely to have cleared.
//
// A real sqlite3_unlock_notify callback would wake the caller the instant
// the lock is released. modernc.org/sqlite's database/sql driver does not
// expose that hook, so this is a linear backoff instead (2ms per attempt,
// capped at 25ms): the caller bounds the number of waits by
// DefaultMaxRetries, and the wait returns early on ctx cancellation.
func waitForUnlock(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt) * 2 * time.Millisecond
	if delay > 25*time.Millisecond {
		delay = 25 * time.Millisecond
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
