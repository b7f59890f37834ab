package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apptcal/config"
	"apptcal/internal/i18n"
	"apptcal/internal/logging"
	"apptcal/internal/model"
	"apptcal/internal/store"
	"apptcal/internal/ui"
)

// baseURL overrides the configured store URL for one invocation
var baseURL string

var rootCmd = &cobra.Command{
	Use:          "apptcal",
	Short:        "Schedule client appointments from your terminal",
	Long:         "apptcal - a mouse-driven appointment calendar for your terminal",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "store service URL (overrides base_url in config)")

	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(schedulesCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// storeClient is what the commands need from the store
type storeClient interface {
	ListClients(ctx context.Context) ([]model.Client, error)
	CreateClient(ctx context.Context, in model.ClientInput) (*model.Client, error)
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	CreateAppointment(ctx context.Context, in model.AppointmentInput) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error)
}

// loadConfig reads the config, applies --base-url and sets up file logging and i18n
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if logPath, err := cfg.LogPath(); err == nil {
		if err := logging.InitFile(logPath, cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	// Non-fatal: messages fall back to their ids
	if err := i18n.Init(cfg.Language); err != nil {
		logging.Log.Warn("i18n initialization failed", zap.Error(err))
	}
	return cfg, nil
}

func newStore(cfg config.Config) *store.Client {
	return store.New(cfg.BaseURL, store.WithTimeout(cfg.RequestTimeout()))
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Log.Info("starting calendar", zap.String("base_url", cfg.BaseURL))

	p := tea.NewProgram(
		ui.NewCalendarApp(newStore(cfg), cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running calendar: %w", err)
	}
	return nil
}
