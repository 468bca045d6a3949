package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the sheetdash version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sheetdash %s\n", Version)
	},
}
