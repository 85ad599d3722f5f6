// Package paramtable reconstructs the declared bind-parameter table that
// SQLite's own prepare step builds internally (the table
// sqlite3_bind_parameter_name/sqlite3_bind_parameter_count expose in the
// native C API). musq's engine layer talks to SQLite through
// database/sql, which does not surface that table, so this package
// re-derives it from the same SQL text by replicating SQLite's documented
// parameter-numbering rule: a bare "?" claims the next anonymous number; an
// explicit "?NNN" claims NNN and advances the anonymous counter to NNN (per
// https://sqlite.org/lang_expr.html#varparam); every other placeholder
// form is a named parameter that claims the next anonymous number on first
// sight and is reused verbatim on every later occurrence of the identical
// token.
package paramtable

import (
	"fmt"
	"strconv"

	"github.com/cortesi/musq/internal/lexsql"
)

// Slot is one declared bind-parameter position (1-based; Slots[0] is
// parameter index 1). Name is the raw declared name including its sigil
// (e.g. "?3", ":a", "$name"), or "" for an anonymous/unreferenced slot.
type Slot struct {
	Name string
}

// Build scans sql and returns its slot table, one slot per distinct
// parameter: its length and names match what
// sqlite3_bind_parameter_count/_name would report for the same statement.
func Build(sql string) ([]Slot, error) {
	var slots []Slot
	seen := map[string]int{}
	anon := 0

	ensure := func(idx int) {
		for len(slots) < idx {
			slots = append(slots, Slot{})
		}
	}

	for _, p := range lexsql.Scan(sql) {
		raw := p.Raw
		if raw == "?" {
			anon++
			ensure(anon)
			// slots[anon-1] stays Name == "" : anonymous.
			continue
		}

		if idx, ok := seen[raw]; ok {
			// Identical token already assigned a slot; nothing changes.
			_ = idx
			continue
		}

		if raw[0] == '?' {
			n, err := parseNumericParam(raw)
			if err != nil {
				return nil, err
			}
			if n > anon {
				anon = n
			}
			ensure(n)
			slots[n-1] = Slot{Name: raw}
			seen[raw] = n
			continue
		}

		// $name / :name / @name (including digit-only $NNN, which is still
		// a distinct declared name to SQLite itself — musq's own resolver
		// decides later whether to treat it as positional).
		anon++
		ensure(anon)
		slots[anon-1] = Slot{Name: raw}
		seen[raw] = anon
	}

	return slots, nil
}

// parseNumericParam validates a "?NNN" token the way SQLite's own parser
// does: no leading zero, all ASCII digits, non-zero, and representable.
func parseNumericParam(raw string) (int, error) {
	if len(raw) < 2 || raw[0] != '?' || raw[1] == '?' {
		return 0, fmt.Errorf("invalid numeric SQL parameter: %s", raw)
	}
	rest := raw[1:]
	if rest == "" || rest[0] == '0' {
		return 0, fmt.Errorf("invalid numeric SQL parameter: %s", raw)
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, fmt.Errorf("invalid numeric SQL parameter: %s", raw)
		}
	}
	n, err := strconv.ParseUint(rest, 10, 63)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid numeric SQL parameter: %s", raw)
	}
	return int(n), nil
}
