package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apptcal/config"
	"apptcal/internal/logging"
	"apptcal/internal/proc"
	"apptcal/internal/server"
)

var (
	serveListen  string
	serveMemory  bool
	serveSQLite  string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the appointment store service",
	Long: `Run the HTTP service the calendar talks to.

Appointments are kept in PostgreSQL. Connection settings come from
server.dsn in config.yml or the DB_HOST, DB_PORT, DB_USER, DB_PASSWORD
and DB_NAME environment variables, which may also be set in a .env file.

Use --sqlite <file> to keep data in a local SQLite file instead, or
--memory to run without a database (data is lost on exit).

Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(serveEnvFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logging.InitConsole(cfg.LogLevel); err != nil {
			return err
		}

		listen := listenAddr(serveListen, cfg.Server)
		lockPath, err := serveLockPath(listen)
		if err != nil {
			return err
		}
		lock, err := proc.Acquire(lockPath)
		if err != nil {
			return err
		}
		defer lock.Release()

		var repo server.Repository
		switch {
		case serveMemory:
			logging.Log.Warn("using in-memory storage, data is lost on exit")
			repo = server.NewMemoryRepository()
		case serveSQLite != "":
			db, err := server.OpenSQLite(serveSQLite)
			if err != nil {
				return err
			}
			defer db.Close()
			repo = db
		default:
			db, err := server.OpenPostgres(server.DSN(cfg.Server))
			if err != nil {
				return err
			}
			defer db.Close()
			repo = db
		}

		logging.Log.Info("starting store service", zap.String("listen", listen), zap.Bool("memory", serveMemory))
		return server.New(repo).Run(listen)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default server.listen, or :$PORT)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep data in memory instead of PostgreSQL")
	serveCmd.Flags().StringVar(&serveSQLite, "sqlite", "", "keep data in this SQLite file instead of PostgreSQL")
	serveCmd.MarkFlagsMutuallyExclusive("memory", "sqlite")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "file with DB_* and PORT variables")
}

// loadEnvFile loads path into the environment. A missing default file is fine.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// listenAddr picks --listen, then PORT, then server.listen
func listenAddr(flag string, cfg config.ServerConfig) string {
	if flag != "" {
		return flag
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	if cfg.Listen != "" {
		return cfg.Listen
	}
	return config.DefaultConfig().Server.Listen
}

// serveLockPath is one lock file per listen address in the config dir
func serveLockPath(listen string) (string, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	name := strings.NewReplacer(":", "_", "/", "_", "[", "", "]", "").Replace(listen)
	return filepath.Join(configDir, "serve"+name+".lock"), nil
}
