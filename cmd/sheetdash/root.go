package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	sheetlog "github.com/duskroseSouthAfrica/sheetdash/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
)

// rootCmd is the base command for sheetdash.
var rootCmd = &cobra.Command{
	Use:   "sheetdash",
	Short: "Chart accounting spreadsheets in the browser",
	Long: `Sheetdash loads CSV and Excel ledgers, works out which columns hold
names, projects, dates and amounts, and serves filterable totals and charts.
Use 'sheetdash serve' for the web dashboard or 'sheetdash analyze' for a
one-off report in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		sheetlog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}
