package engine

import (
	"fmt"
	"strings"

	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// indexMarkers flag spreadsheet row-number columns that carry no data.
var indexMarkers = []string{"sl no", "index"}

// CleanHeaders trims every header in place and names blank ones Column_<i>
// by zero-based position.
func CleanHeaders(t *table.Table) {
	for i := range t.Columns {
		h := strings.TrimSpace(t.Columns[i].Name)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i)
		}
		t.Columns[i].Name = h
	}
}

// NormalizeHeaders cleans the headers, then drops row-index columns. It
// returns the headers that were dropped.
func NormalizeHeaders(t *table.Table) []string {
	CleanHeaders(t)

	var (
		positions []int
		dropped   []string
	)
	for i, c := range t.Columns {
		if isIndexColumn(c.Name) {
			positions = append(positions, i)
			dropped = append(dropped, c.Name)
		}
	}
	t.DropColumns(positions)
	return dropped
}

func isIndexColumn(header string) bool {
	h := strings.ToLower(header)
	for _, m := range indexMarkers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}
