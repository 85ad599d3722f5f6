package musq

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestQueryLogPayloadShortStatementHasNoFullText(t *testing.T) {
	summary, full := queryLogPayload("SELECT 1")
	assert.Equal(t, "SELECT 1", summary)
	assert.Empty(t, full)
}

func TestQueryLogPayloadLongStatementTruncatesSummary(t *testing.T) {
	sql := "SELECT id, name, email FROM users WHERE id = ?1"
	summary, full := queryLogPayload(sql)
	assert.Equal(t, "SELECT id, name, email …", summary)
	assert.Equal(t, sql, full)
}

func TestQueryLoggerFinishUsesSlowLevelPastThreshold(t *testing.T) {
	logger := zerolog.Nop()
	settings := LogSettings{
		StatementsLevel:        zerolog.DebugLevel,
		SlowStatementsLevel:    zerolog.WarnLevel,
		SlowStatementsDuration: 0,
	}
	q := newQueryLogger(&logger, "SELECT 1", settings)
	q.start = time.Now().Add(-time.Second)
	q.incRowsReturned()
	q.incRowsAffected(2)
	q.Finish()
}

func TestQueryLoggerFinishNoopWithNilLogger(t *testing.T) {
	q := newQueryLogger(nil, "SELECT 1", DefaultLogSettings())
	q.Finish()
}
