package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/occfilter/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the occfilter version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "occfilter %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.Date)
	},
}
