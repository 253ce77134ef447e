// Package commands implements the raftlogctl CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	version string
	rootCmd = &cobra.Command{
		Use:   "raftlogctl",
		Short: "Inspect and drive minor log compaction",
		Long: `raftlogctl is an operational tool around the minor compaction planner.

It can dry-run the planner against a directory of segment files to show
which groups the next tick would rewrite, without touching any data.`,
	}
)

// Execute runs the CLI.
func Execute(v string) error {
	version = v

	rootCmd.AddCommand(
		versionCmd(),
		planCmd(),
	)

	return rootCmd.Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("raftlogctl version %s\n", version)
		},
	}
}
