package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"apptcal/internal/i18n"
	"apptcal/internal/model"
)

var (
	clientName  string
	clientEmail string
	clientPhone string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage the client roster",
}

var clientsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return listClients(cmd.Context(), cmd.OutOrStdout(), newStore(cfg))
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	Long: `Add a client to the roster.

Examples:
  apptcal clients add --name "Ada Lovelace" --email ada@example.com
  apptcal clients add -n "Bo" -p 555-0100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		in := model.ClientInput{Name: clientName, Email: clientEmail, Phone: clientPhone}
		return addClient(cmd.Context(), cmd.OutOrStdout(), newStore(cfg), in)
	},
}

func init() {
	clientsAddCmd.Flags().StringVarP(&clientName, "name", "n", "", "client name (required)")
	clientsAddCmd.Flags().StringVarP(&clientEmail, "email", "e", "", "e-mail address, used for invitations")
	clientsAddCmd.Flags().StringVarP(&clientPhone, "phone", "p", "", "phone number")

	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
}

func listClients(ctx context.Context, out io.Writer, st storeClient) error {
	clients, err := st.ListClients(ctx)
	if err != nil {
		return err
	}
	printClients(out, clients)
	return nil
}

func addClient(ctx context.Context, out io.Writer, st storeClient, in model.ClientInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.New("--name is required")
	}

	client, err := st.CreateClient(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, i18n.T("cli.client_created", map[string]interface{}{"Name": client.Name, "ID": client.ID}))
	return nil
}
