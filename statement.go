package musq

import "github.com/cortesi/musq/internal/paramtable"

// Statement is SQL text plus its lazily-populated column vector and
// declared bind-parameter slot table. It is the unit the statement cache
// keys on and the value a Connection's Prepare call returns.
type Statement struct {
	sql     string
	columns []Column
	slots   []paramtable.Slot
}

// SQL returns the statement's source text.
func (s *Statement) SQL() string { return s.sql }

// Columns returns the result column metadata, populated after the first
// execution (empty for statements with no result set, e.g. INSERT).
func (s *Statement) Columns() []Column { return s.columns }

// ParameterCount returns the number of declared bind-parameter slots.
func (s *Statement) ParameterCount() int { return len(s.slots) }
