package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apptcal/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update apptcal to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Homebrew owns its binaries
		if executable, err := os.Executable(); err == nil && updater.ManagedByHomebrew(executable) {
			fmt.Println("apptcal is installed via Homebrew.")
			fmt.Println("Please run 'brew upgrade apptcal' instead.")
			return nil
		}

		return updater.Update(cmd.Context())
	},
}
