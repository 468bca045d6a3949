package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

const ledgerCSV = `Sl No,Name,Project,Amount,Date
1,Alice,Apollo,100,15/01/2024
2,Bob,Apollo,50,20/01/2024
3,Alice,Zeus,25.5,03/02/2024
4,Carol,Zeus,1200,14/02/2024
`

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags clears flag values left over from earlier Execute calls.
func resetFlags() {
	analyzeEntity, analyzeMonth, analyzeProject = engine.All, engine.All, engine.All
	analyzeRows = nil
	analyzeJSON, analyzeNoGroups, analyzeStats = false, false, false
	serveAddr, flagRules, flagStrictPeriods, flagSkipColumns = "", "", false, 1
	for _, fs := range []*pflag.FlagSet{analyzeCmd.Flags(), serveCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "CSV and Excel ledgers")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "version")
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "quiet", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "global flag %s not registered", name)
	}
	v := rootCmd.PersistentFlags().ShorthandLookup("v")
	require.NotNil(t, v)
	assert.Equal(t, "verbose", v.Name)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", Version)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sheetdash dev\n", out)
}

func TestAnalyze_Text(t *testing.T) {
	path := writeFile(t, "ledger.csv", ledgerCSV)

	out, err := run(t, "--no-color", "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(4 rows)")
	assert.Contains(t, out, "entity: Name  project: Project  period: Month  measure: Amount")
	assert.Contains(t, out, "dropped: [Sl No]")
	assert.Contains(t, out, "Total Records: 4")
	assert.Contains(t, out, "Total Amount: 1,375.50")
	assert.Contains(t, out, "By Name")
	assert.Contains(t, out, "Apollo > Bob")
}

func TestAnalyze_JSONWithFilter(t *testing.T) {
	path := writeFile(t, "ledger.csv", ledgerCSV)

	out, err := run(t, "analyze", path, "--json", "--entity", "Alice")
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, "Name", report.Roles.Entity)
	assert.Equal(t, []string{"Amount"}, report.Roles.Measures)
	assert.Equal(t, summaryReport{Records: 2, Measure: "Amount", Total: 125.5}, report.Summary)
	assert.Equal(t, []groupReport{{Key: "Alice", Total: 125.5, Count: 2}}, report.ByEntity)
	assert.Equal(t, []pathReport{
		{Path: []string{"Apollo", "Alice"}, Total: 100},
		{Path: []string{"Zeus", "Alice"}, Total: 25.5},
	}, report.Hierarchy)
	assert.Nil(t, report.Selection)
}

func TestAnalyze_Stats(t *testing.T) {
	path := writeFile(t, "ledger.csv", ledgerCSV)

	out, err := run(t, "analyze", path, "--json", "--stats", "--no-groups")
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.ByEntity)
	assert.Contains(t, report.Stats, statReport{Column: "Amount", Op: "sum", Value: 1375.5})
	assert.Contains(t, report.Stats, statReport{Column: "Amount", Op: "max", Value: 1200})
	assert.Contains(t, report.Stats, statReport{Column: "Amount", Op: "count", Value: 4})
}

func TestAnalyze_EmptyFilterResultNotice(t *testing.T) {
	path := writeFile(t, "ledger.csv", ledgerCSV)

	out, err := run(t, "analyze", path, "--json", "--entity", "Bob", "--month", "2024-02")
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.Summary.Records)
	assert.Contains(t, report.Notices, noticeReport{Level: "warning", Message: engine.ErrEmptyResult.Error()})
}

func TestAnalyze_Rows(t *testing.T) {
	path := writeFile(t, "statement.csv", `Particulars,Units,FY23,FY24
Revenue,INR,1000,1200
Expenses,INR,700,650
Profit,INR,300,550
`)

	out, err := run(t, "analyze", path, "--json", "--rows", "0,2")
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Selection)
	assert.Equal(t, "Particulars", report.Selection.LabelHeader)
	assert.Equal(t, []string{"Revenue", "Profit"}, report.Selection.Labels)
	assert.Equal(t, []string{"FY23", "FY24"}, report.Selection.Order)
	assert.Equal(t, []float64{1200, 550}, report.Selection.Series["FY24"])
	// No amount column in this file.
	assert.Contains(t, report.Notices, noticeReport{Level: "warning", Message: engine.ErrNoMeasure.Error()})
}

func TestAnalyze_TooFewRows(t *testing.T) {
	path := writeFile(t, "ledger.csv", ledgerCSV)

	out, err := run(t, "--no-color", "analyze", path, "--rows", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "~ "+engine.ErrTooFewRows.Error())
	assert.NotContains(t, out, "Selected rows")
}

func TestAnalyze_Errors(t *testing.T) {
	mixed := writeFile(t, "mixed.csv", "Name,Amount,Date\nA,1,15/01/2024\nB,2,soon\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unsupported extension", []string{"analyze", writeFile(t, "notes.txt", "x")}, ExitInvalidArgs},
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}, ExitInvalidArgs},
		{"empty file", []string{"analyze", writeFile(t, "empty.csv", "")}, ExitLoadFailure},
		{"strict periods", []string{"analyze", mixed, "--strict-periods"}, ExitLoadFailure},
		{"missing rules file", []string{"analyze", mixed, "--rules", filepath.Join(t.TempDir(), "rules.yaml")}, ExitInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			var ece *exitCodeError
			require.True(t, errors.As(err, &ece), "want exitCodeError, got %T", err)
			assert.Equal(t, tt.code, ece.ExitCode())
		})
	}
}

func TestAnalyze_RulesFile(t *testing.T) {
	path := writeFile(t, "ledger.csv", "Vendor,Cost\nAcme,10\nAcme,5\nGlobex,7\n")
	rules := writeFile(t, "rules.yaml", `rules:
  - role: entity
    match: [vendor]
  - role: measure
    match: [cost]
`)

	out, err := run(t, "analyze", path, "--json", "--rules", rules)
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Vendor", report.Roles.Entity)
	assert.Equal(t, []groupReport{{Key: "Acme", Total: 15, Count: 2}, {Key: "Globex", Total: 7, Count: 1}}, report.ByEntity)
}

func TestServe_InvalidConfig(t *testing.T) {
	_, err := run(t, "serve", "--addr", "nowhere")
	require.Error(t, err)
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, ExitInvalidArgs, ece.ExitCode())
	assert.Contains(t, ece.Error(), "invalid listen address")
}
