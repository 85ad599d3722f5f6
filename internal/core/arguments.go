package core

import (
	"strconv"
	"strings"

	"github.com/cortesi/musq/internal/paramtable"
)

// Arguments is an ordered list of bound Values plus a name→1-based-index
// map. Re-binding the same name overwrites the existing entry; it never
// appends.
type Arguments struct {
	values []Value
	named  map[string]int
}

// NewArguments returns an empty Arguments set.
func NewArguments() *Arguments {
	return &Arguments{named: map[string]int{}}
}

// Add appends a positional value.
func (a *Arguments) Add(v Value) *Arguments {
	a.values = append(a.values, v)
	return a
}

// AddNamed binds a value to a named parameter. name may carry a sigil
// (":", "@", "$", or bare "?") which is stripped before lookup.
func (a *Arguments) AddNamed(name string, v Value) *Arguments {
	trimmed := strings.TrimLeft(name, ":@$?")
	if a.named == nil {
		a.named = map[string]int{}
	}
	if idx, ok := a.named[trimmed]; ok {
		a.values[idx-1] = v
		return a
	}
	a.values = append(a.values, v)
	a.named[trimmed] = len(a.values)
	return a
}

// Len returns the number of positional values currently held.
func (a *Arguments) Len() int { return len(a.values) }

// Values returns the underlying positional value slice, for callers (the
// QueryBuilder fragment-splicing logic) that need to merge two Arguments
// sets directly rather than re-resolving parameters.
func (a *Arguments) Values() []Value { return a.values }

// NamedIndices returns the name→1-based-index map of every named parameter
// bound so far.
func (a *Arguments) NamedIndices() map[string]int {
	if a.named == nil {
		return nil
	}
	out := make(map[string]int, len(a.named))
	for k, v := range a.named {
		out[k] = v
	}
	return out
}

// AppendValue appends v as a new positional value and returns its 1-based
// index.
func (a *Arguments) AppendValue(v Value) int {
	a.values = append(a.values, v)
	return len(a.values)
}

// BindName associates name with the 1-based positional index idx,
// overwriting any previous association. Used when splicing a fragment's
// arguments into a larger Arguments set with renamed parameters.
func (a *Arguments) BindName(name string, idx int) {
	if a.named == nil {
		a.named = map[string]int{}
	}
	a.named[name] = idx
}

// Resolve binds this Arguments set against the statement's declared
// parameter slots, returning the ordered driver values to pass to
// database/sql (one per declared slot, in slot order) and the number of
// anonymous/first-seen-named slots consumed (so a caller splicing compound
// statements can continue numbering from there).
func (a *Arguments) Resolve(slots []paramtable.Slot, offset int) ([]any, int, error) {
	anonPos := offset
	firstSeen := map[string]int{}

	out := make([]any, len(slots))

	for i, slot := range slots {
		var n int
		if slot.Name == "" {
			anonPos++
			n = anonPos
		} else {
			name := slot.Name
			switch {
			case name[0] == '?':
				idx, err := parseNumericParam(name)
				if err != nil {
					return nil, 0, err
				}
				n = idx
			case name[0] == '$':
				rest := name[1:]
				if isAllDigits(rest) {
					idx, err := parseDollarNumeric(name, rest)
					if err != nil {
						return nil, 0, err
					}
					n = idx
				} else {
					n = a.resolveNamed(rest, &anonPos, firstSeen)
				}
			case name[0] == ':':
				n = a.resolveNamed(name[1:], &anonPos, firstSeen)
			case name[0] == '@':
				n = a.resolveNamed(name[1:], &anonPos, firstSeen)
			default:
				return nil, 0, ProtocolErrorf("unsupported SQL parameter format: %s", name)
			}
		}

		if n <= 0 || n > len(a.values) {
			return nil, 0, ProtocolErrorf(
				"bind parameter index out of bounds: the len is %d, but the index is %d",
				len(a.values), n,
			)
		}
		out[i] = a.values[n-1].DriverValue()
	}

	return out, anonPos - offset, nil
}

func (a *Arguments) resolveNamed(rest string, anonPos *int, firstSeen map[string]int) int {
	if idx, ok := a.named[rest]; ok {
		if idx > *anonPos {
			*anonPos = idx
		}
		return idx
	}
	if idx, ok := firstSeen[rest]; ok {
		return idx
	}
	*anonPos++
	firstSeen[rest] = *anonPos
	return *anonPos
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseNumericParam(name string) (int, error) {
	if len(name) < 2 || name[0] != '?' || name[1] == '?' {
		return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
	}
	rest := name[1:]
	if rest == "" || rest[0] == '0' {
		return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
		}
	}
	n, err := strconv.ParseUint(rest, 10, 63)
	if err != nil || n == 0 {
		return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
	}
	return int(n), nil
}

func parseDollarNumeric(name, rest string) (int, error) {
	if rest == "" || rest[0] == '0' {
		return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
	}
	n, err := strconv.ParseUint(rest, 10, 63)
	if err != nil || n == 0 {
		return 0, ProtocolErrorf("invalid numeric SQL parameter: %s", name)
	}
	return int(n), nil
}
