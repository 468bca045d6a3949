package engine

import (
	"fmt"
	"time"

	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// PreviewRows is how many rows the data preview shows.
const PreviewRows = 5

// PrepareOptions configures the one-off reshaping done after upload.
type PrepareOptions struct {
	Rules         Rules
	StrictPeriods bool
}

// Dataset is an uploaded table after header cleanup, role inference and
// period derivation.
type Dataset struct {
	// Raw is the table as loaded; the row-selection variant reads it with
	// only the headers cleaned.
	Raw     *table.Table
	Table   *table.Table
	Roles   Roles
	Dropped []string
}

// Prepare reshapes a freshly loaded table. The raw table is not modified.
// Warnings about missing roles come back as notices; only strict period
// parsing can fail.
func Prepare(raw *table.Table, opts PrepareOptions) (*Dataset, []Notice, error) {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	t := raw.Clone()
	dropped := NormalizeHeaders(t)
	roles, notices := InferRoles(t.Headers(), rules)

	period, err := DerivePeriods(t, roles.PeriodSources, opts.StrictPeriods)
	if err != nil {
		return nil, notices, fmt.Errorf("derive periods: %w", err)
	}
	roles.Period = period

	return &Dataset{Raw: raw, Table: t, Roles: roles, Dropped: dropped}, notices, nil
}

// Options lists the dropdown values for role.
func (d *Dataset) Options(role Role) []string {
	return Options(d.Table, d.Roles, role)
}

// Preview returns the leading rows of the prepared table.
func (d *Dataset) Preview() *table.Table {
	return d.Table.Head(PreviewRows)
}

// Summary describes the filtered rows.
type Summary struct {
	Records int
	Measure string
	Total   float64
}

// Dashboard is everything the charts need for one filter selection.
type Dashboard struct {
	Filter       FilterSelection
	Filtered     *table.Table
	Summary      Summary
	ByEntity     []GroupTotal
	Hierarchy    []PathTotal
	HasHierarchy bool
	Notices      []Notice
}

// HasCharts reports whether any chart data was produced.
func (d *Dashboard) HasCharts() bool {
	return len(d.ByEntity) > 0 || d.HasHierarchy
}

// Dashboard filters the dataset and computes the summary and chart
// aggregates. It is recomputed from scratch on every call.
func (d *Dataset) Dashboard(sel FilterSelection) *Dashboard {
	filtered := ApplyFilter(d.Table, d.Roles, sel)
	measure := d.Roles.PrimaryMeasure()
	dash := &Dashboard{
		Filter:   sel,
		Filtered: filtered,
		Summary:  Summary{Records: filtered.NumRows(), Measure: measure},
	}

	if filtered.NumRows() == 0 {
		dash.Notices = append(dash.Notices, warn(ErrEmptyResult))
		return dash
	}
	// Prepare already reported the missing measure.
	if measure == "" {
		return dash
	}
	dash.Summary.Total = Total(filtered, measure)

	if d.Roles.Entity != "" {
		dash.ByEntity = GroupSum(filtered, d.Roles.Entity, measure)
	}
	dash.Hierarchy, dash.HasHierarchy = HierarchySum(filtered, d.Roles.Category, d.Roles.Entity, measure)
	return dash
}

// Select runs the row-selection variant. It skips role inference and index
// column removal, so column positions match the uploaded file.
func (d *Dataset) Select(rows []int, opts SelectionOptions) (*Selection, error) {
	t := d.Raw.Clone()
	CleanHeaders(t)
	return SelectRows(t, rows, opts)
}

// Session is the state held for one user between requests. Sessions are
// values: a change produces a new Session rather than mutating a shared one.
type Session struct {
	ID         string
	FileName   string
	FileSize   int64
	UploadedAt time.Time
	Dataset    *Dataset
	Notices    []Notice
	Filter     FilterSelection
	Rows       []int
}

// NewSession starts a session for a prepared upload.
func NewSession(id, fileName string, size int64, ds *Dataset, notices []Notice) *Session {
	return &Session{
		ID:         id,
		FileName:   fileName,
		FileSize:   size,
		UploadedAt: time.Now(),
		Dataset:    ds,
		Notices:    notices,
		Filter:     FilterSelection{},
	}
}

// WithFilter returns a copy of s with sel as the current filter.
func (s *Session) WithFilter(sel FilterSelection) *Session {
	next := *s
	next.Filter = sel
	return &next
}

// WithRows returns a copy of s with rows as the current row selection.
// Rows is non-nil afterwards even for an empty selection, which marks the
// selection as submitted.
func (s *Session) WithRows(rows []int) *Session {
	next := *s
	next.Rows = make([]int, len(rows))
	copy(next.Rows, rows)
	return &next
}

// RowsSubmitted reports whether a row selection has been made.
func (s *Session) RowsSubmitted() bool { return s.Rows != nil }

// Dashboard recomputes the dashboard for the session's current filter.
func (s *Session) Dashboard() *Dashboard {
	return s.Dataset.Dashboard(s.Filter)
}
