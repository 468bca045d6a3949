// calculations.go
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Operations lists the statistics Describe understands, in display order.
var Operations = []string{"sum", "average", "median", "min", "max", "count", "std"}

var ErrNoNumericValues = errors.New("no numeric values")

// Stat is one computed column statistic.
type Stat struct {
	Col   string
	Op    string
	Value float64
}

// Describe computes op over the numeric cells of the named column. Nulls and
// text cells are skipped.
func Describe(t *Table, column, op string) (float64, error) {
	col, ok := t.Column(column)
	if !ok {
		return 0, fmt.Errorf("column %q not found", column)
	}
	var values []float64
	for _, v := range col.Values {
		if f, ok := v.Float(); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%s: %w", column, ErrNoNumericValues)
	}
	switch op {
	case "sum":
		return sum(values), nil
	case "average":
		return avg(values), nil
	case "median":
		return median(values), nil
	case "min":
		return minOf(values), nil
	case "max":
		return maxOf(values), nil
	case "count":
		return float64(len(values)), nil
	case "std":
		return std(values), nil
	default:
		return 0, fmt.Errorf("unsupported operation %q", op)
	}
}

// DescribeAll runs every operation over every numeric column. Columns with
// no numeric cells are left out.
func DescribeAll(t *Table) []Stat {
	var stats []Stat
	for _, i := range NumericColumns(t) {
		name := t.Columns[i].Name
		for _, op := range Operations {
			v, err := Describe(t, name, op)
			if err != nil {
				continue
			}
			stats = append(stats, Stat{Col: name, Op: op, Value: v})
		}
	}
	return stats
}

func sum(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func avg(vals []float64) float64 { return sum(vals) / float64(len(vals)) }

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// std is the sample standard deviation.
func std(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := avg(vals)
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}
