package musq

import "github.com/cortesi/musq/internal/core"

// Arguments is an ordered list of bound Values plus a name→1-based-index
// map. Re-binding the same name overwrites the existing entry; it never
// appends.
type Arguments = core.Arguments

// NewArguments returns an empty Arguments set.
func NewArguments() *Arguments { return core.NewArguments() }
