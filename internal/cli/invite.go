package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"apptcal/internal/i18n"
	"apptcal/internal/invite"
	"apptcal/internal/model"
)

// errNoSMTP is returned by invite when config.yml has no smtp section
var errNoSMTP = errors.New("no smtp relay configured - add an smtp section to config.yml")

// inviteSender delivers one invitation
type inviteSender interface {
	Send(inv invite.Invitation) error
}

var inviteCmd = &cobra.Command{
	Use:   "invite <appointment-id>",
	Short: "E-mail a calendar invitation for an appointment to its client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid appointment id %q", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.SMTP == nil || cfg.SMTP.Host == "" {
			return errNoSMTP
		}

		inv, err := buildInvitation(cmd.Context(), newStore(cfg), id)
		if err != nil {
			return err
		}
		inv.Slot = cfg.Slot()
		return sendInvitation(cmd.OutOrStdout(), invite.NewSender(*cfg.SMTP), inv)
	},
}

// buildInvitation looks up the appointment and its client
func buildInvitation(ctx context.Context, st storeClient, id int64) (invite.Invitation, error) {
	var (
		a       *model.Appointment
		clients []model.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = st.GetAppointment(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		clients, err = st.ListClients(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return invite.Invitation{}, err
	}
	for _, c := range clients {
		if c.ID == a.ClientID {
			return invite.Invitation{Appointment: *a, Client: c}, nil
		}
	}
	return invite.Invitation{}, fmt.Errorf("client %d of appointment %d not found", a.ClientID, id)
}

func sendInvitation(out io.Writer, sender inviteSender, inv invite.Invitation) error {
	if err := sender.Send(inv); err != nil {
		return err
	}
	fmt.Fprintln(out, i18n.T("cli.invite_sent", map[string]interface{}{"Email": inv.Client.Email}))
	return nil
}
