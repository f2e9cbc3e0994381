package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whereis",
		Short: "Find files by name, size and time, in parallel.",
		Long: `whereis walks one or more directories concurrently and prints every file
whose name matches a pattern and passes the requested filters.

Examples:
  whereis find report --ext txt           # files named like report*.txt
  whereis find --ext go --depth 2 -l ~/src
  whereis serve                           # run the HTTP API`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}
