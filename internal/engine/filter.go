package engine

import (
	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// All is the selection value meaning "do not filter on this role".
const All = "All"

// FilterSelection maps Entity, Period and Category to a chosen value. A
// missing role is the same as All.
type FilterSelection map[Role]string

// Active returns the roles with a concrete value selected.
func (s FilterSelection) Active() map[Role]string {
	active := make(map[Role]string)
	for role, v := range s {
		if v != "" && v != All {
			active[role] = v
		}
	}
	return active
}

// ApplyFilter returns a new table holding the rows that match every active
// selection. Selections on roles the dataset lacks are ignored. The input
// table is never modified.
func ApplyFilter(t *table.Table, roles Roles, sel FilterSelection) *table.Table {
	type constraint struct {
		col  []table.Value
		want string
	}
	var constraints []constraint
	active := sel.Active()
	for _, role := range []Role{Entity, Period, Category} {
		want, ok := active[role]
		if !ok {
			continue
		}
		name := roles.Column(role)
		col, ok := t.Column(name)
		if name == "" || !ok {
			continue
		}
		constraints = append(constraints, constraint{col: col.Values, want: want})
	}

	indices := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		pass := true
		for _, c := range constraints {
			if c.col[i].IsNull() || c.col[i].String() != c.want {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return t.Take(indices)
}

// Options lists the distinct non-null values of the column bound to role, in
// first-seen order. It returns nil when the role is absent.
func Options(t *table.Table, roles Roles, role Role) []string {
	name := roles.Column(role)
	col, ok := t.Column(name)
	if name == "" || !ok {
		return nil
	}
	seen := make(map[string]bool)
	var opts []string
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			opts = append(opts, s)
		}
	}
	return opts
}
