package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"apptcal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure apptcal settings",
	Long:  `Open interactive configuration to view and edit apptcal settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigTUI()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, "config.yml"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}
