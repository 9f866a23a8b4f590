package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "scanmodel %s\n", Version)
		fmt.Fprintf(stdout, "  commit: %s\n", Commit)
		fmt.Fprintf(stdout, "  built:  %s\n", Date)
	},
}
