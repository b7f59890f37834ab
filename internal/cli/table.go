package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"apptcal/internal/i18n"
	"apptcal/internal/model"
	"apptcal/internal/ui/utils"
)

const defaultTableWidth = 100

// tableWidth is the terminal width, or a fixed width when output is redirected
func tableWidth() int {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
			return w
		}
	}
	return defaultTableWidth
}

// isInteractive reports whether we can prompt on stdin
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func printClients(out io.Writer, clients []model.Client) {
	if len(clients) == 0 {
		fmt.Fprintln(out, i18n.T("cli.no_clients"))
		return
	}

	fmt.Fprintf(out, "  %s %s %s %s\n", utils.PadRight("ID", 5), utils.PadRight("NAME", 24), utils.PadRight("EMAIL", 30), "PHONE")
	for _, c := range clients {
		fmt.Fprintf(out, "  %s %s %s %s\n",
			utils.PadRight(strconv.FormatInt(c.ID, 10), 5),
			utils.PadRight(utils.TruncateStr(c.Name, 24), 24),
			utils.PadRight(utils.TruncateStr(c.Email, 30), 30),
			c.Phone)
	}
}

// printAppointments renders one row per appointment; the description takes the remaining width
func printAppointments(out io.Writer, appointments []model.Appointment, width int) {
	if len(appointments) == 0 {
		fmt.Fprintln(out, i18n.T("cli.no_appointments"))
		return
	}

	const idW, whenW, clientW = 6, 30, 18
	descW := width - idW - whenW - clientW - 6
	if descW < 10 {
		descW = 10
	}

	fmt.Fprintf(out, "  %s %s %s %s\n", utils.PadRight("ID", idW), utils.PadRight("WHEN", whenW), utils.PadRight("CLIENT", clientW), "DESCRIPTION")
	for _, a := range appointments {
		fmt.Fprintf(out, "  %s %s %s %s\n",
			utils.PadRight(strconv.FormatInt(a.ID, 10), idW),
			utils.PadRight(utils.FormatSpan(a.AppointmentTime, a.EndTime), whenW),
			utils.PadRight(utils.TruncateStr(a.ClientName, clientW), clientW),
			utils.TruncateStr(strings.ReplaceAll(a.Description, "\n", " "), descW))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  "+i18n.TPlural("cli.appointments", len(appointments), nil))
}
