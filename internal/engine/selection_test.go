package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

func statement() *table.Table {
	return table.New(
		[]string{"Particulars", "Units", "FY23", "FY24"},
		[][]string{
			{"Revenue", "INR", "1000", "1200"},
			{"Expenses", "INR", "700", "650"},
			{"Profit", "INR", "300", "550"},
		},
	)
}

func TestSelectRows(t *testing.T) {
	sel, err := SelectRows(statement(), []int{0, 2}, DefaultSelectionOptions())
	require.NoError(t, err)

	assert.Equal(t, "Particulars", sel.LabelHeader)
	assert.Equal(t, []string{"Revenue", "Profit"}, sel.Labels)
	require.Len(t, sel.Series, 2)
	assert.Equal(t, DataSeries{Name: "FY23", Values: []float64{1000, 300}}, sel.Series[0])
	assert.Equal(t, DataSeries{Name: "FY24", Values: []float64{1200, 550}}, sel.Series[1])

	x, y, err := sel.ScatterPair()
	require.NoError(t, err)
	assert.Equal(t, "FY23", x.Name)
	assert.Equal(t, "FY24", y.Name)
}

func TestSelectRows_ThreeColumnsNoScatter(t *testing.T) {
	tbl := table.New([]string{"Particulars", "Units", "Value"}, [][]string{
		{"a", "x", "1"},
		{"b", "x", "2"},
	})
	sel, err := SelectRows(tbl, []int{0, 1}, DefaultSelectionOptions())
	require.NoError(t, err)

	require.Len(t, sel.Series, 1)
	assert.Len(t, sel.Series[0].Values, 2)

	_, _, err = sel.ScatterPair()
	assert.True(t, errors.Is(err, ErrNoScatterPairs))
}

func TestSelectRows_TooFewRows(t *testing.T) {
	for _, rows := range [][]int{nil, {}, {1}} {
		sel, err := SelectRows(statement(), rows, DefaultSelectionOptions())
		assert.Nil(t, sel)
		assert.True(t, errors.Is(err, ErrTooFewRows))
		assert.Equal(t, Warning, SelectionNotice(err).Level)
	}
}

func TestSelectRows_TooFewColumns(t *testing.T) {
	tbl := table.New([]string{"Particulars", "Value"}, [][]string{{"a", "1"}, {"b", "2"}})
	sel, err := SelectRows(tbl, []int{0, 1}, DefaultSelectionOptions())
	assert.Nil(t, sel)
	assert.True(t, errors.Is(err, ErrTooFewColumns))
	assert.Equal(t, Error, SelectionNotice(err).Level)
}

func TestSelectRows_SkipOffset(t *testing.T) {
	sel, err := SelectRows(statement(), []int{0, 1}, SelectionOptions{LabelColumn: 0, SkipColumns: 2})
	require.NoError(t, err)
	require.Len(t, sel.Series, 1)
	assert.Equal(t, "FY24", sel.Series[0].Name)

	_, err = SelectRows(statement(), []int{0, 1}, SelectionOptions{LabelColumn: 0, SkipColumns: 3})
	assert.True(t, errors.Is(err, ErrTooFewColumns))

	_, err = SelectRows(statement(), []int{0, 1}, SelectionOptions{SkipColumns: -1})
	assert.Error(t, err)
}

func TestSelectRows_OutOfRange(t *testing.T) {
	_, err := SelectRows(statement(), []int{0, 3}, DefaultSelectionOptions())
	assert.True(t, errors.Is(err, ErrRowOutOfRange))
}

func TestDataset_SelectUsesUploadedColumns(t *testing.T) {
	raw := table.New(
		[]string{"Sl No", "Particulars", "Amount"},
		[][]string{{"1", "Rent", "10"}, {"2", "Power", "20"}},
	)
	ds, _, err := Prepare(raw, PrepareOptions{})
	require.NoError(t, err)

	// Index columns are dropped from the dashboard table but not from the
	// row-selection view.
	sel, err := ds.Select([]int{0, 1}, DefaultSelectionOptions())
	require.NoError(t, err)
	assert.Equal(t, "Sl No", sel.LabelHeader)
	assert.Equal(t, []string{"1", "2"}, sel.Labels)
	require.Len(t, sel.Series, 1)
	assert.Equal(t, "Amount", sel.Series[0].Name)
}
