package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"apptcal/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the apptcal version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
