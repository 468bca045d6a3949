package engine

import (
	"errors"
	"fmt"

	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// MinSelectedRows is the smallest row selection that can be charted.
const MinSelectedRows = 2

// SelectionOptions places the label and data columns of a row selection.
// Data columns start at LabelColumn + 1 + SkipColumns.
type SelectionOptions struct {
	LabelColumn int
	SkipColumns int
}

// DefaultSelectionOptions labels rows by the first column and skips the
// second one.
func DefaultSelectionOptions() SelectionOptions {
	return SelectionOptions{LabelColumn: 0, SkipColumns: 1}
}

func (o SelectionOptions) firstData() int { return o.LabelColumn + 1 + o.SkipColumns }

// DataSeries is one numeric column over the selected rows.
type DataSeries struct {
	Name   string
	Values []float64
}

// Selection is the reshaped result of picking rows from a table.
type Selection struct {
	LabelHeader string
	Labels      []string
	Series      []DataSeries
}

// SelectRows reshapes the chosen rows for charting. It returns ErrTooFewRows
// for fewer than MinSelectedRows rows, ErrTooFewColumns when the table has no
// data column after the label and skipped columns, and ErrRowOutOfRange for
// an index outside the table.
func SelectRows(t *table.Table, rows []int, opts SelectionOptions) (*Selection, error) {
	if len(rows) < MinSelectedRows {
		return nil, ErrTooFewRows
	}
	if opts.LabelColumn < 0 || opts.SkipColumns < 0 {
		return nil, fmt.Errorf("invalid selection layout %+v", opts)
	}
	if len(t.Columns) <= opts.firstData() || len(t.Columns) < 3 {
		return nil, fmt.Errorf("%d columns: %w", len(t.Columns), ErrTooFewColumns)
	}
	for _, r := range rows {
		if r < 0 || r >= t.NumRows() {
			return nil, fmt.Errorf("row %d of %d: %w", r, t.NumRows(), ErrRowOutOfRange)
		}
	}

	label := t.Columns[opts.LabelColumn]
	sel := &Selection{LabelHeader: label.Name, Labels: make([]string, len(rows))}
	for i, r := range rows {
		sel.Labels[i] = keyLabel(label.Values[r])
	}
	for _, col := range t.Columns[opts.firstData():] {
		series := DataSeries{Name: col.Name, Values: make([]float64, len(rows))}
		for i, r := range rows {
			series.Values[i] = amount(col.Values[r])
		}
		sel.Series = append(sel.Series, series)
	}
	return sel, nil
}

// SelectionNotice classifies a SelectRows error for display: too few rows
// is a warning, anything else aborts charting as an error.
func SelectionNotice(err error) Notice {
	if errors.Is(err, ErrTooFewRows) {
		return warn(err)
	}
	return Notice{Level: Error, Err: err}
}

// ScatterPair returns the first two data series for a correlation plot.
func (s *Selection) ScatterPair() (x, y DataSeries, err error) {
	if len(s.Series) < 2 {
		return DataSeries{}, DataSeries{}, ErrNoScatterPairs
	}
	return s.Series[0], s.Series[1], nil
}
