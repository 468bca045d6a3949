// Package table holds the in-memory spreadsheet model and the readers that
// produce it from uploaded CSV and Excel files.
package table

import (
	"strconv"
	"strings"
)

// Kind is the type of a single cell.
type Kind uint8

const (
	Null Kind = iota
	String
	Number
)

// Value is one cell of a Table.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// NullValue is the missing-cell marker.
var NullValue = Value{}

func Str(s string) Value     { return Value{kind: String, str: s} }
func Num(f float64) Value    { return Value{kind: Number, num: f} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Float returns the numeric content of v. Strings and nulls report false.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// String renders the cell the way it is shown in the UI and compared by filters.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered set of columns sharing one row count.
type Table struct {
	Columns []Column
}

// New builds a table from headers and string rows. Rows shorter than the
// header are padded with nulls, longer rows widen the table with unnamed
// columns.
func New(headers []string, rows [][]string) *Table {
	width := len(headers)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	t := &Table{Columns: make([]Column, width)}
	for c := 0; c < width; c++ {
		name := ""
		if c < len(headers) {
			name = headers[c]
		}
		values := make([]Value, len(rows))
		for r, row := range rows {
			if c < len(row) {
				values[r] = Parse(row[c])
			}
		}
		t.Columns[c] = Column{Name: name, Values: values}
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Index returns the position of the first column called name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the first column called name.
func (t *Table) Column(name string) (*Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	return &t.Columns[i], true
}

// Take returns a new table holding copies of the given rows, in the given
// order. The receiver is left untouched.
func (t *Table) Take(indices []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for c, col := range t.Columns {
		values := make([]Value, len(indices))
		for i, r := range indices {
			values[i] = col.Values[r]
		}
		out.Columns[c] = Column{Name: col.Name, Values: values}
	}
	return out
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.Take(indices)
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for c, col := range t.Columns {
		out.Columns[c] = Column{Name: col.Name, Values: append([]Value(nil), col.Values...)}
	}
	return out
}

// DropColumns removes every column whose position is in positions.
func (t *Table) DropColumns(positions []int) {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}
	kept := t.Columns[:0]
	for i, c := range t.Columns {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
}

// SetColumn replaces the values of the column called name, appending a new
// column when none exists.
func (t *Table) SetColumn(name string, values []Value) {
	if i := t.Index(name); i >= 0 {
		t.Columns[i].Values = values
		return
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
}

// Strings renders every row as strings, for templates and CLI output.
func (t *Table) Strings() [][]string {
	rows := make([][]string, t.NumRows())
	for r := range rows {
		row := make([]string, len(t.Columns))
		for c, col := range t.Columns {
			row[c] = col.Values[r].String()
		}
		rows[r] = row
	}
	return rows
}

// nullMarkers are the spellings spreadsheet exports use for empty cells.
var nullMarkers = map[string]bool{
	"#N/A": true, "#NA": true, "<NA>": true, "N/A": true, "NA": true, "NULL": true,
	"NaN": true, "None": true, "n/a": true, "nan": true, "null": true,
}

// Parse converts a raw cell string into a Value.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" || nullMarkers[s] {
		return NullValue
	}
	if f, ok := parseNumber(s); ok {
		return Num(f)
	}
	return Str(s)
}
