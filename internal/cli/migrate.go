package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/history"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage run history schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending schema migrations to the run history database.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Args:  cobra.NoArgs,
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "Migrations directory (default: bundled migrations)")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	if sqlStore == nil {
		return fmt.Errorf("run history database is unavailable")
	}

	fmt.Println("🔄 Running history migrations...")

	if err := history.RunMigrations(cmd.Context(), sqlStore.DB(), migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("✅ Migrations completed successfully!")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	if sqlStore == nil {
		return fmt.Errorf("run history database is unavailable")
	}

	version, dirty, err := history.MigrationVersion(cmd.Context(), sqlStore.DB())
	if err != nil {
		return err
	}

	fmt.Printf("Version: %d\n", version)
	if dirty {
		fmt.Printf("%s⚠️  Database is in a dirty migration state%s\n", WarningStyle, Reset)
	}
	return nil
}
