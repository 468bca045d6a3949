package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duskroseSouthAfrica/sheetdash/internal/chart"
	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// Analyze-specific flag values.
var (
	analyzeEntity   string
	analyzeMonth    string
	analyzeProject  string
	analyzeRows     []int
	analyzeJSON     bool
	analyzeNoGroups bool
	analyzeStats    bool
)

// analyzeCmd runs the dashboard pipeline once and prints the result.
var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Print totals for a spreadsheet without starting the server",
	Long: `Load a CSV, XLS or XLSX file, apply the same column detection and
filters as the dashboard, and print the summary and group totals. With
--rows the selected rows are reshaped the way the comparison charts see them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEntity, "entity", engine.All, "only rows for this name, client or employee")
	analyzeCmd.Flags().StringVar(&analyzeMonth, "month", engine.All, "only rows for this period")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", engine.All, "only rows for this project")
	analyzeCmd.Flags().IntSliceVar(&analyzeRows, "rows", nil, "zero-based row indices to compare (e.g. 0,2,5)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "machine-readable output")
	analyzeCmd.Flags().BoolVar(&analyzeNoGroups, "no-groups", false, "omit the per-entity and per-project totals")
	analyzeCmd.Flags().BoolVar(&analyzeStats, "stats", false, "include per-column statistics of numeric columns")
	addEngineFlags(analyzeCmd)
}

// analyzeReport is the --json output.
type analyzeReport struct {
	File      string           `json:"file"`
	Rows      int              `json:"rows"`
	Roles     roleReport       `json:"roles"`
	Dropped   []string         `json:"dropped,omitempty"`
	Notices   []noticeReport   `json:"notices,omitempty"`
	Summary   summaryReport    `json:"summary"`
	ByEntity  []groupReport    `json:"byEntity,omitempty"`
	Hierarchy []pathReport     `json:"hierarchy,omitempty"`
	Selection *selectionReport `json:"selection,omitempty"`
	Stats     []statReport     `json:"stats,omitempty"`
}

type roleReport struct {
	Entity   string   `json:"entity,omitempty"`
	Category string   `json:"category,omitempty"`
	Measures []string `json:"measures,omitempty"`
	Period   string   `json:"period,omitempty"`
}

type noticeReport struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type summaryReport struct {
	Records int     `json:"records"`
	Measure string  `json:"measure,omitempty"`
	Total   float64 `json:"total"`
}

type groupReport struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type pathReport struct {
	Path  []string `json:"path"`
	Total float64  `json:"total"`
}

type statReport struct {
	Column string  `json:"column"`
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
}

type selectionReport struct {
	LabelHeader string               `json:"labelHeader"`
	Labels      []string             `json:"labels"`
	Series      map[string][]float64 `json:"series"`
	Order       []string             `json:"order"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return exitError(ExitInvalidArgs, "sheetdash: %v", err)
	}

	path := args[0]
	if !table.SupportedExtension(path) {
		return exitError(ExitInvalidArgs, "sheetdash: %s: unsupported file type (want .csv, .xls or .xlsx)", path)
	}
	f, err := os.Open(path) //nolint:gosec // user-supplied path is the point
	if err != nil {
		return exitError(ExitInvalidArgs, "sheetdash: %v", err)
	}
	defer func() { _ = f.Close() }()

	raw, err := table.Load(f, filepath.Base(path))
	if err != nil {
		return exitError(ExitLoadFailure, "sheetdash: load %s: %v", path, err)
	}
	slog.Debug("file loaded", "file", path, "rows", raw.NumRows(), "columns", len(raw.Columns))

	ds, notices, err := engine.Prepare(raw, engine.PrepareOptions{Rules: rules, StrictPeriods: cfg.StrictPeriods})
	if err != nil {
		return exitError(ExitLoadFailure, "sheetdash: %s: %v", path, err)
	}

	dash := ds.Dashboard(engine.FilterSelection{
		engine.Entity:   analyzeEntity,
		engine.Period:   analyzeMonth,
		engine.Category: analyzeProject,
	})
	notices = append(notices, dash.Notices...)

	report := analyzeReport{
		File: path,
		Rows: ds.Table.NumRows(),
		Roles: roleReport{
			Entity:   ds.Roles.Entity,
			Category: ds.Roles.Category,
			Measures: ds.Roles.Measures,
			Period:   ds.Roles.Period,
		},
		Dropped: ds.Dropped,
		Summary: summaryReport{
			Records: dash.Summary.Records,
			Measure: dash.Summary.Measure,
			Total:   chart.RoundTo2(dash.Summary.Total),
		},
	}
	if !analyzeNoGroups {
		for _, g := range dash.ByEntity {
			report.ByEntity = append(report.ByEntity, groupReport{Key: g.Key, Total: chart.RoundTo2(g.Total), Count: g.Count})
		}
		for _, p := range dash.Hierarchy {
			report.Hierarchy = append(report.Hierarchy, pathReport{Path: p.Path, Total: chart.RoundTo2(p.Total)})
		}
	}

	if cmd.Flags().Changed("rows") {
		sel, err := ds.Select(analyzeRows, cfg.SelectionOptions())
		if err != nil {
			notices = append(notices, engine.SelectionNotice(err))
		} else {
			report.Selection = newSelectionReport(sel)
		}
	}
	if analyzeStats {
		for _, st := range table.DescribeAll(ds.Table) {
			report.Stats = append(report.Stats, statReport{Column: st.Col, Op: st.Op, Value: chart.RoundTo2(st.Value)})
		}
	}
	for _, n := range notices {
		report.Notices = append(report.Notices, noticeReport{Level: n.Level.String(), Message: n.Message()})
	}

	w := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(w, report)
	return nil
}

func newSelectionReport(sel *engine.Selection) *selectionReport {
	r := &selectionReport{
		LabelHeader: sel.LabelHeader,
		Labels:      sel.Labels,
		Series:      make(map[string][]float64, len(sel.Series)),
	}
	for _, s := range sel.Series {
		r.Series[s.Name] = s.Values
		r.Order = append(r.Order, s.Name)
	}
	return r
}

func printReport(w io.Writer, r analyzeReport) {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	_, _ = bold.Fprintf(w, "%s", r.File)
	_, _ = fmt.Fprintf(w, " %s\n", dim.Sprintf("(%d rows)", r.Rows))
	_, _ = fmt.Fprintf(w, "  entity: %s  project: %s  period: %s  measure: %s\n",
		orDash(r.Roles.Entity), orDash(r.Roles.Category), orDash(r.Roles.Period), orDash(r.Summary.Measure))
	if len(r.Dropped) > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", dim.Sprintf("dropped: %v", r.Dropped))
	}

	if len(r.Notices) > 0 {
		_, _ = fmt.Fprintln(w)
		for _, n := range r.Notices {
			if n.Level == engine.Error.String() {
				_, _ = red.Fprintf(w, "  ! %s\n", n.Message)
			} else {
				_, _ = yellow.Fprintf(w, "  ~ %s\n", n.Message)
			}
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Summary")
	_, _ = fmt.Fprintf(w, "  Total Records: %d\n", r.Summary.Records)
	if r.Summary.Measure != "" {
		_, _ = fmt.Fprintf(w, "  Total %s: %s\n", r.Summary.Measure, chart.FormatAmount(r.Summary.Total))
	}

	if len(r.ByEntity) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = bold.Fprintf(w, "By %s\n", r.Roles.Entity)
		for _, g := range r.ByEntity {
			_, _ = fmt.Fprintf(w, "  %-24s %14s %s\n", g.Key, chart.FormatAmount(g.Total), dim.Sprintf("(%d)", g.Count))
		}
	}
	if len(r.Hierarchy) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = bold.Fprintf(w, "By %s and %s\n", r.Roles.Category, r.Roles.Entity)
		for _, p := range r.Hierarchy {
			_, _ = fmt.Fprintf(w, "  %-24s %14s\n", p.Path[0]+" > "+p.Path[1], chart.FormatAmount(p.Total))
		}
	}

	if len(r.Stats) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "Column statistics")
		for _, st := range r.Stats {
			_, _ = fmt.Fprintf(w, "  %-16s %-8s %14s\n", st.Column, st.Op, chart.FormatAmount(st.Value))
		}
	}

	if s := r.Selection; s != nil {
		_, _ = fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "Selected rows")
		_, _ = fmt.Fprintf(w, "  %-24s", s.LabelHeader)
		for _, name := range s.Order {
			_, _ = fmt.Fprintf(w, " %14s", name)
		}
		_, _ = fmt.Fprintln(w)
		for i, label := range s.Labels {
			_, _ = fmt.Fprintf(w, "  %-24s", label)
			for _, name := range s.Order {
				_, _ = fmt.Fprintf(w, " %14s", chart.FormatAmount(s.Series[name][i]))
			}
			_, _ = fmt.Fprintln(w)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
