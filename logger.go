package musq

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogSettings controls per-query tracing events: a normal level for
// statements under the slow threshold, and a separate (typically louder)
// level once the threshold is exceeded.
type LogSettings struct {
	StatementsLevel     zerolog.Level
	SlowStatementsLevel zerolog.Level
	SlowStatementsDuration time.Duration
}

// DefaultLogSettings returns the default levels: Debug for ordinary
// statements, Warn once a statement runs a second or longer.
func DefaultLogSettings() LogSettings {
	return LogSettings{
		StatementsLevel:        zerolog.DebugLevel,
		SlowStatementsLevel:    zerolog.WarnLevel,
		SlowStatementsDuration: time.Second,
	}
}

// queryLogger accumulates one statement's execution counters and emits a
// single structured event when Finish is called. Go has no destructor, so
// callers must defer Finish explicitly.
type queryLogger struct {
	log   *zerolog.Logger
	sql   string
	settings LogSettings

	rowsReturned int64
	rowsAffected int64
	start        time.Time
}

func newQueryLogger(log *zerolog.Logger, sql string, settings LogSettings) *queryLogger {
	return &queryLogger{log: log, sql: sql, settings: settings, start: time.Now()}
}

func (q *queryLogger) incRowsReturned()         { q.rowsReturned++ }
func (q *queryLogger) incRowsAffected(n int64)   { q.rowsAffected += n }

// Finish emits the end-of-query event at StatementsLevel, or
// SlowStatementsLevel if elapsed meets or exceeds SlowStatementsDuration.
func (q *queryLogger) Finish() {
	if q.log == nil {
		return
	}
	elapsed := time.Since(q.start)

	level := q.settings.StatementsLevel
	if elapsed >= q.settings.SlowStatementsDuration {
		level = q.settings.SlowStatementsLevel
	}
	if level == zerolog.Disabled || !q.log.GetLevel().Enabled(level) {
		return
	}

	summary, full := queryLogPayload(q.sql)
	ev := q.log.WithLevel(level).
		Str("summary", summary).
		Int64("rows_affected", q.rowsAffected).
		Int64("rows_returned", q.rowsReturned).
		Dur("elapsed", elapsed)
	if full != "" {
		ev = ev.Str("db.statement", full)
	}
	ev.Msg("query")
}

// queryLogPayload returns a short summary (first four whitespace-separated
// words) plus, only when the statement is longer than that summary, the
// full SQL text for the db.statement field.
func queryLogPayload(sql string) (summary, full string) {
	fields := strings.Fields(sql)
	n := len(fields)
	if n > 4 {
		n = 4
	}
	summary = strings.Join(fields[:n], " ")
	if summary != strings.TrimSpace(sql) {
		return summary + " …", sql
	}
	return summary, ""
}
