package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"apptcal/config"
	"apptcal/internal/ai"
	"apptcal/internal/dialog"
	"apptcal/internal/i18n"
	"apptcal/internal/model"
)

const (
	dateLayout = "2006-01-02"
	aiTimeout  = 2 * time.Minute
)

var (
	listFrom   string
	listTo     string
	listClient string

	addClientName  string
	addStart       string
	addEnd         string
	addDescription string
	addDebug       bool

	removeYes bool
)

var schedulesCmd = &cobra.Command{
	Use:     "schedules",
	Aliases: []string{"s"},
	Short:   "List, add and remove appointments",
}

var schedulesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := newFilter(listFrom, listTo, listClient)
		if err != nil {
			return err
		}

		appointments, err := newStore(cfg).ListAppointments(cmd.Context())
		if err != nil {
			return err
		}
		printAppointments(cmd.OutOrStdout(), f.apply(appointments), tableWidth())
		return nil
	},
}

var schedulesAddCmd = &cobra.Command{
	Use:   "add [natural language description]",
	Short: "Schedule an appointment",
	Long: `Schedule an appointment from flags, or from a natural language description
parsed by the configured AI provider.

Examples:
  apptcal schedules add --client Ada --start "2024-01-10 09:00" --end "2024-01-10 09:30"
  apptcal schedules add "checkup with Ada tomorrow at 9 for 45 minutes"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st := newStore(cfg)
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var in model.AppointmentInput
		if len(args) > 0 {
			clients, err := st.ListClients(ctx)
			if err != nil {
				return err
			}
			aiClient := ai.NewClient(cfg.AIProviders)
			if !aiClient.Available() {
				return ai.ErrNoProvider
			}
			fmt.Fprintf(out, "Using %s to parse: %q\n\n", aiClient.Provider(), strings.Join(args, " "))

			aiCtx, cancel := context.WithTimeout(ctx, aiTimeout)
			defer cancel()
			in, err = quickAdd(aiCtx, aiClient, clients, strings.Join(args, " "), time.Now(), debugWriter(out))
			if err != nil {
				return err
			}
			printInput(out, in, clients)
			if isInteractive() {
				choice, _, cancelled := RunSelector("Create this appointment?", []SelectorItem{
					{ID: "yes", Label: "Yes, create it"},
					{ID: "no", Label: "No, cancel"},
				})
				if cancelled || choice == "no" {
					fmt.Fprintln(out, i18n.T("cli.cancelled"))
					return nil
				}
			}
		} else {
			client, err := resolveClient(ctx, st, addClientName)
			if err != nil {
				return err
			}
			in, err = flagInput(cfg, client, addStart, addEnd, addDescription)
			if err != nil {
				return err
			}
		}

		created, err := st.CreateAppointment(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, i18n.T("cli.appointment_created", map[string]interface{}{"ID": created.ID}))
		return nil
	},
}

var schedulesRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an appointment",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid appointment id %q", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		confirm := func(a *model.Appointment) bool {
			// Skip prompt with --yes or when not a terminal (scripts)
			if removeYes || !isInteractive() {
				return true
			}
			printAppointments(cmd.OutOrStdout(), []model.Appointment{*a}, tableWidth())
			return askYesNo(os.Stdin, cmd.OutOrStdout(), i18n.T("cli.confirm_delete", map[string]interface{}{"ID": id}))
		}
		return removeAppointment(cmd.Context(), cmd.OutOrStdout(), newStore(cfg), id, confirm)
	},
}

func init() {
	schedulesListCmd.Flags().StringVar(&listFrom, "from", "", "first day to show (YYYY-MM-DD)")
	schedulesListCmd.Flags().StringVar(&listTo, "to", "", "last day to show (YYYY-MM-DD)")
	schedulesListCmd.Flags().StringVarP(&listClient, "client", "c", "", "only this client (name or prefix)")

	schedulesAddCmd.Flags().StringVarP(&addClientName, "client", "c", "", "client name or id (prompts when omitted)")
	schedulesAddCmd.Flags().StringVar(&addStart, "start", "", "start time (YYYY-MM-DD HH:MM)")
	schedulesAddCmd.Flags().StringVar(&addEnd, "end", "", "end time (YYYY-MM-DD HH:MM), optional")
	schedulesAddCmd.Flags().StringVarP(&addDescription, "description", "d", "", "what the appointment is for")
	schedulesAddCmd.Flags().BoolVar(&addDebug, "debug", false, "show the raw AI response")

	schedulesRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip confirmation prompt")

	schedulesCmd.AddCommand(schedulesListCmd)
	schedulesCmd.AddCommand(schedulesAddCmd)
	schedulesCmd.AddCommand(schedulesRemoveCmd)
}

// filter selects appointments by day range and client
type filter struct {
	from   time.Time // inclusive, zero for no bound
	to     time.Time // exclusive, zero for no bound
	client string
}

func newFilter(from, to, client string) (filter, error) {
	f := filter{client: strings.TrimSpace(client)}
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --from %q: want YYYY-MM-DD", from)
		}
		f.from = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --to %q: want YYYY-MM-DD", to)
		}
		f.to = t.AddDate(0, 0, 1)
	}
	return f, nil
}

// apply returns the matching appointments ordered by start time
func (f filter) apply(appointments []model.Appointment) []model.Appointment {
	var result []model.Appointment
	for _, a := range appointments {
		if !f.from.IsZero() && a.AppointmentTime.Before(f.from) {
			continue
		}
		if !f.to.IsZero() && !a.AppointmentTime.Before(f.to) {
			continue
		}
		if f.client != "" && !strings.HasPrefix(strings.ToLower(a.ClientName), strings.ToLower(f.client)) {
			continue
		}
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AppointmentTime.Before(result[j].AppointmentTime)
	})
	return result
}

// resolveClient finds the client named (or numbered) by name, prompting when name is empty
func resolveClient(ctx context.Context, st storeClient, name string) (model.Client, error) {
	clients, err := st.ListClients(ctx)
	if err != nil {
		return model.Client{}, err
	}
	if len(clients) == 0 {
		return model.Client{}, errors.New(i18n.T("cli.no_clients"))
	}

	if strings.TrimSpace(name) == "" {
		if !isInteractive() {
			return model.Client{}, errors.New("--client is required")
		}
		client, ok := pickClient(clients)
		if !ok {
			return model.Client{}, errors.New(i18n.T("cli.cancelled"))
		}
		return client, nil
	}

	if id, err := strconv.ParseInt(name, 10, 64); err == nil {
		for _, c := range clients {
			if c.ID == id {
				return c, nil
			}
		}
	}
	if client, ok := model.MatchClient(name, clients); ok {
		return client, nil
	}
	return model.Client{}, fmt.Errorf("%w: %q", ai.ErrUnknownClient, name)
}

// parseWhen accepts the dialog's input layout or any wire timestamp
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dialog.InputLayout, s, time.Local); err == nil {
		return t, nil
	}
	return model.ParseTimestamp(s)
}

// flagInput validates the add flags the same way the schedule dialog does
func flagInput(cfg config.Config, client model.Client, start, end, description string) (model.AppointmentInput, error) {
	if strings.TrimSpace(start) == "" {
		return model.AppointmentInput{}, errors.New("--start is required (or describe the appointment in words)")
	}
	form := dialog.CreateForm{ClientID: client.ID, Description: strings.TrimSpace(description)}

	var err error
	if form.Start, err = parseWhen(start); err != nil {
		return model.AppointmentInput{}, dialog.ErrInvalidStart
	}
	if strings.TrimSpace(end) != "" {
		if form.End, err = parseWhen(end); err != nil {
			return model.AppointmentInput{}, dialog.ErrInvalidEnd
		}
		if cfg.RequireEndAfterStart && form.End.Before(form.Start) {
			return model.AppointmentInput{}, dialog.ErrEndBeforeStart
		}
	}
	return form.Input()
}

// aiCaller is the part of ai.Client quick add uses
type aiCaller interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// quickAdd turns a sentence into a create body for one of clients
func quickAdd(ctx context.Context, caller aiCaller, clients []model.Client, input string, now time.Time, debug io.Writer) (model.AppointmentInput, error) {
	response, err := caller.Call(ctx, ai.ParseAppointmentPrompt(input, clients, now))
	if err != nil {
		return model.AppointmentInput{}, err
	}
	if debug != nil {
		fmt.Fprintf(debug, "AI response:\n%s\n\n", response)
	}

	parsed, err := ai.ParseAppointmentResponse(response)
	if err != nil {
		return model.AppointmentInput{}, err
	}
	return parsed.Input(clients)
}

func debugWriter(out io.Writer) io.Writer {
	if addDebug {
		return out
	}
	return nil
}

func printInput(out io.Writer, in model.AppointmentInput, clients []model.Client) {
	name := ""
	for _, c := range clients {
		if in.ClientID != nil && c.ID == *in.ClientID {
			name = c.Name
		}
	}
	description := ""
	if in.Description != nil {
		description = *in.Description
	}
	printAppointments(out, []model.Appointment{{
		ClientName:      name,
		AppointmentTime: in.AppointmentTime,
		EndTime:         in.EndTime,
		Description:     description,
	}}, tableWidth())
}

func removeAppointment(ctx context.Context, out io.Writer, st storeClient, id int64, confirm func(*model.Appointment) bool) error {
	a, err := st.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	if !confirm(a) {
		fmt.Fprintln(out, i18n.T("cli.cancelled"))
		return nil
	}

	if _, err := st.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(out, i18n.T("cli.appointment_deleted", map[string]interface{}{"ID": id}))
	return nil
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
