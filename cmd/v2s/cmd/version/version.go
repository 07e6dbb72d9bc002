package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "v0.0.1"

// Cmd represents the version command
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of v2s",
	Long:  `All software has versions. This is v2s's.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}
