package core

import "fmt"

// ProtocolError is a caller-visible misuse detectable in musq code itself:
// malformed parameter names, out-of-range bind indices, unsupported
// parameter prefixes, empty inputs to builder helpers that require
// non-empty input, and similar.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return "musq: protocol error: " + e.Message }

// ProtocolErrorf builds a ProtocolError from a format string.
func ProtocolErrorf(format string, args ...any) error {
	return &ProtocolError{Message: fmt.Sprintf(format, args...)}
}

// ColumnNotFoundError is raised by Row accessors when an index or name does
// not resolve to a column.
type ColumnNotFoundError struct {
	Name  string
	Index int
	Len   int
}

func (e *ColumnNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("musq: column not found: %q", e.Name)
	}
	return fmt.Sprintf("musq: column index out of bounds: the len is %d, but the index is %d", e.Len, e.Index)
}
