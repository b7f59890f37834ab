package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"apptcal/internal/i18n"
	"apptcal/internal/ics"
	"apptcal/internal/model"
)

var (
	exportOut    string
	exportFrom   string
	exportTo     string
	exportClient string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export appointments as an iCalendar (.ics) file",
	Long: `Export appointments as an iCalendar file that other calendar apps can import.

Examples:
  apptcal export > appointments.ics
  apptcal export --from 2024-01-01 --to 2024-01-31 -o january.ics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := newFilter(exportFrom, exportTo, exportClient)
		if err != nil {
			return err
		}

		appointments, err := newStore(cfg).ListAppointments(cmd.Context())
		if err != nil {
			return err
		}
		appointments = f.apply(appointments)

		if exportOut == "" || exportOut == "-" {
			return writeCalendar(cmd.OutOrStdout(), appointments, cfg.Slot())
		}

		file, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		if err := writeCalendar(file, appointments, cfg.Slot()); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.exported", map[string]interface{}{"Path": exportOut}))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first day to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last day to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportClient, "client", "c", "", "only this client (name or prefix)")
}

func writeCalendar(w io.Writer, appointments []model.Appointment, slot time.Duration) error {
	if err := ics.Export(w, appointments, slot, time.Now()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
