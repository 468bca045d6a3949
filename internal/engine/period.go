package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// PeriodColumn is the name of the derived calendar-month column.
const PeriodColumn = "Month"

// dateLayout is DD/MM/YYYY; single-digit days and months are accepted.
const dateLayout = "2/1/2006"

// periodKind is the parse strategy chosen for a whole source column.
type periodKind int

const (
	periodSkip periodKind = iota
	periodDate
	periodMonthName
)

// DerivePeriods fills the Month column from the period source columns, in
// order, so the last usable source wins. A source where any cell parses as
// DD/MM/YYYY is a date column: every row becomes YYYY-MM, or null if that row
// does not parse. Otherwise text cells are read as month names and
// capitalized. With strict set, a date column holding unparseable text
// returns ErrMixedPeriod instead of nulling those rows.
//
// It returns the derived column name, or "" when no source was usable.
func DerivePeriods(t *table.Table, sources []string, strict bool) (string, error) {
	derived := ""
	for _, src := range sources {
		col, ok := t.Column(src)
		if !ok {
			continue
		}
		kind, bad := classifyPeriodColumn(col.Values)
		if kind == periodDate && strict && bad > 0 {
			return "", fmt.Errorf("%s: %d unparseable rows: %w", src, bad, ErrMixedPeriod)
		}

		var values []table.Value
		switch kind {
		case periodDate:
			values = datePeriods(col.Values)
		case periodMonthName:
			values = monthNamePeriods(col.Values)
		default:
			continue
		}
		t.SetColumn(PeriodColumn, values)
		derived = PeriodColumn
	}
	return derived, nil
}

// classifyPeriodColumn decides the strategy for the whole column and counts
// non-null cells that would be lost under the date strategy.
func classifyPeriodColumn(values []table.Value) (periodKind, int) {
	parsed, failed, text := 0, 0, 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if v.Kind() == table.String {
			text++
		}
		if _, ok := parseDate(v); ok {
			parsed++
		} else {
			failed++
		}
	}
	switch {
	case parsed > 0:
		return periodDate, failed
	case text > 0:
		return periodMonthName, 0
	default:
		return periodSkip, 0
	}
}

func parseDate(v table.Value) (time.Time, bool) {
	if v.Kind() != table.String {
		return time.Time{}, false
	}
	ts, err := time.Parse(dateLayout, v.String())
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func datePeriods(values []table.Value) []table.Value {
	out := make([]table.Value, len(values))
	for i, v := range values {
		if ts, ok := parseDate(v); ok {
			out[i] = table.Str(ts.Format("2006-01"))
		}
	}
	return out
}

func monthNamePeriods(values []table.Value) []table.Value {
	out := make([]table.Value, len(values))
	for i, v := range values {
		if v.Kind() == table.String {
			out[i] = table.Str(capitalize(v.String()))
		}
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
