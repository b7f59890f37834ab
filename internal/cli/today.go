package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apptcal/internal/i18n"
	"apptcal/internal/logging"
	"apptcal/internal/model"
	"apptcal/internal/notify"
)

var todayNotify bool

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's appointments",
	Long: `Show today's appointments.

With --notify, also post a desktop notification for the next one,
which suits a cron job or login hook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appointments, err := newStore(cfg).ListAppointments(cmd.Context())
		if err != nil {
			return err
		}

		now := time.Now()
		today := dayFilter(now).apply(appointments)
		printAppointments(cmd.OutOrStdout(), today, tableWidth())

		if todayNotify {
			return notifyNext(cmd.OutOrStdout(), today, now, cfg.Slot(), notify.Send)
		}
		return nil
	},
}

func init() {
	todayCmd.Flags().BoolVar(&todayNotify, "notify", false, "post a desktop notification for the next appointment")
}

// dayFilter covers the calendar day containing t
func dayFilter(t time.Time) filter {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return filter{from: from, to: from.AddDate(0, 0, 1)}
}

// nextAppointment returns the first appointment still running or upcoming at now.
// appointments must be sorted by start.
func nextAppointment(appointments []model.Appointment, now time.Time, slot time.Duration) (model.Appointment, bool) {
	for _, a := range appointments {
		if a.EffectiveEnd(slot).After(now) {
			return a, true
		}
	}
	return model.Appointment{}, false
}

func notifyNext(out io.Writer, appointments []model.Appointment, now time.Time, slot time.Duration, send func(title, message string) error) error {
	next, ok := nextAppointment(appointments, now, slot)
	if !ok {
		fmt.Fprintln(out, i18n.T("cli.no_upcoming"))
		return nil
	}

	message := next.AppointmentTime.Format("15:04") + " " + model.Title(next.ClientName, next.Description)
	if err := send(i18n.T("cli.next_appointment"), message); err != nil {
		logging.Log.Warn("notification failed", zap.Error(err))
		return err
	}
	return nil
}
