package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/config"
	"github.com/dashlab/labctl/internal/history"
	"github.com/dashlab/labctl/internal/logger"
	"github.com/dashlab/labctl/internal/stack"
)

var (
	cfgFile  string
	cfg      *config.Config
	store    history.Store
	sqlStore *history.SQLite
	launcher *stack.Launcher
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "Local stack orchestration for the DashLab dashboard",
	Long: `Labctl orchestrates the local DashLab stack: it builds and runs the
dashboard, its document database and the reverse proxy through docker compose,
tears everything down when a run ends, and keeps a journal of every run.

It also installs the pre-commit lint hook, builds and serves the project
documentation, and exposes a small status API.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip init for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		// Load configuration
		if cfgFile == "" {
			if envPath := os.Getenv("LABCTL_CONFIG_PATH"); envPath != "" {
				cfgFile = envPath
			} else {
				cfgFile = config.GetConfigPath()
			}
		}

		if config.Exists(cfgFile) {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		} else {
			// No config yet: run with defaults so first use works without
			// the init wizard.
			cfg = config.DefaultConfig()
		}

		logger.Init(logger.ParseLogLevel(cfg.LogLevel), os.Stderr)

		// Open the run history journal. History is best-effort: a broken
		// journal must never block orchestration.
		sqliteStore := history.New(cfg.History.URI)
		if err := sqliteStore.Connect(context.Background()); err != nil {
			logger.Warning("run history unavailable: %v", err)
		} else {
			store = sqliteStore
			sqlStore = sqliteStore
		}

		launcher = stack.NewLauncher(cfg, store)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Disconnect(context.Background())
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.labctl/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(hooksCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(migrateCmd)
}
