package engine

import (
	"errors"
	"log/slog"
)

// Conditions surfaced to the user. None of them stop the session.
var (
	ErrNoMeasure      = errors.New("no 'Amount' columns found in the dataset")
	ErrNoEntity       = errors.New("no name, client or employee column found; entity filters and grouping are disabled")
	ErrEmptyResult    = errors.New("no rows match the selected filters")
	ErrTooFewRows     = errors.New("select at least 2 rows to compare")
	ErrTooFewColumns  = errors.New("selection needs at least 3 columns: a label, a skipped column and one data column")
	ErrRowOutOfRange  = errors.New("selected row is out of range")
	ErrMixedPeriod    = errors.New("period column mixes dates and other values")
	ErrNoHierarchy    = errors.New("hierarchical charts need both a project and a name column")
	ErrNoScatterPairs = errors.New("scatter needs at least 2 data columns")
)

// Level orders notices by severity.
type Level int

const (
	Warning Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "warning"
}

// Notice is a user-visible message produced while reshaping a table.
type Notice struct {
	Level Level
	Err   error
}

func (n Notice) Message() string { return n.Err.Error() }

func warn(err error) Notice { return Notice{Level: Warning, Err: err} }

// Log writes the notices at the matching slog level.
func Log(notices []Notice, args ...any) {
	for _, n := range notices {
		if n.Level == Error {
			slog.Error(n.Message(), args...)
		} else {
			slog.Warn(n.Message(), args...)
		}
	}
}
