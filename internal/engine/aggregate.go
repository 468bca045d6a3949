package engine

import (
	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// BlankLabel groups rows whose key cell is empty.
const BlankLabel = "(blank)"

// GroupTotal is the summed measure for one key.
type GroupTotal struct {
	Key   string
	Total float64
	Count int
}

// PathTotal is the summed measure for one leaf of a two-level hierarchy.
type PathTotal struct {
	Path  []string
	Total float64
}

// Total sums the numeric cells of the measure column. Nulls and text count
// as zero.
func Total(t *table.Table, measure string) float64 {
	col, ok := t.Column(measure)
	if !ok {
		return 0
	}
	total := 0.0
	for _, v := range col.Values {
		total += amount(v)
	}
	return total
}

// GroupSum sums measure per distinct value of key, in first-seen order. Rows
// with an empty key are kept under BlankLabel so the group totals always add
// up to Total over the same table.
func GroupSum(t *table.Table, key, measure string) []GroupTotal {
	keys, okKey := t.Column(key)
	values, okMeasure := t.Column(measure)
	if !okKey || !okMeasure {
		return nil
	}

	index := make(map[string]int)
	var groups []GroupTotal
	for i, k := range keys.Values {
		label := keyLabel(k)
		pos, seen := index[label]
		if !seen {
			pos = len(groups)
			index[label] = pos
			groups = append(groups, GroupTotal{Key: label})
		}
		groups[pos].Total += amount(values.Values[i])
		groups[pos].Count++
	}
	return groups
}

// HierarchySum sums measure per (outer, inner) pair, in first-seen order.
// It returns false without data when either level is missing; there is no
// single-level fallback.
func HierarchySum(t *table.Table, outer, inner, measure string) ([]PathTotal, bool) {
	if outer == "" || inner == "" || measure == "" {
		return nil, false
	}
	outerCol, ok1 := t.Column(outer)
	innerCol, ok2 := t.Column(inner)
	values, ok3 := t.Column(measure)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}

	type pair struct{ outer, inner string }
	index := make(map[pair]int)
	var paths []PathTotal
	for i := range values.Values {
		p := pair{keyLabel(outerCol.Values[i]), keyLabel(innerCol.Values[i])}
		pos, seen := index[p]
		if !seen {
			pos = len(paths)
			index[p] = pos
			paths = append(paths, PathTotal{Path: []string{p.outer, p.inner}})
		}
		paths[pos].Total += amount(values.Values[i])
	}
	return paths, true
}

func amount(v table.Value) float64 {
	f, _ := v.Float()
	return f
}

func keyLabel(v table.Value) string {
	if v.IsNull() {
		return BlankLabel
	}
	return v.String()
}
