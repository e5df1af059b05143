package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize labctl configuration",
	Long:  `Interactive wizard to set up labctl configuration including environments, docs and run history.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to Labctl - DashLab Stack Setup")
	fmt.Println("==========================================")
	fmt.Println()

	// Check if config already exists
	configPath := cfgFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	newCfg := config.DefaultConfig()

	// Engine configuration
	fmt.Println("\n🐳 Container Engine")
	fmt.Println("-------------------")

	bin, err := promptOptional(reader, "Engine binary [docker]: ", "docker")
	if err != nil {
		return err
	}
	newCfg.ComposeBin = bin

	envFile, err := promptOptional(reader, "Default env file (empty to skip): ", "")
	if err != nil {
		return err
	}
	newCfg.EnvFile = envFile

	// Stack configuration
	fmt.Println("\n📊 Stack")
	fmt.Println("--------")

	dashboardURL, err := promptOptional(reader, "Dashboard URL [http://localhost:7777]: ", "http://localhost:7777")
	if err != nil {
		return err
	}
	newCfg.Probe.DashboardURL = dashboardURL

	mongoURI, err := promptOptional(reader, "Mongo URI [mongodb://localhost:27017]: ", "mongodb://localhost:27017")
	if err != nil {
		return err
	}
	newCfg.Probe.MongoURI = mongoURI

	// Docs configuration
	fmt.Println("\n📚 Documentation")
	fmt.Println("----------------")

	docsSource, err := promptOptional(reader, "Docs source directory [docs/src]: ", "docs/src")
	if err != nil {
		return err
	}
	newCfg.Docs.SourceDir = docsSource

	docsPort, err := promptOptional(reader, "Docs port [8000]: ", "8000")
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(docsPort)
	if err != nil {
		return fmt.Errorf("invalid docs port: %s", docsPort)
	}
	newCfg.Docs.Port = port

	// Save configuration
	fmt.Println("\n💾 Saving configuration...")
	if err := newCfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Start the dev stack:    labctl up dev")
	fmt.Println("  2. Install the git hook:   labctl hooks install")
	fmt.Println("  3. Build the docs:         labctl docs build")
	fmt.Println("  4. Start the status API:   labctl serve")

	return nil
}
