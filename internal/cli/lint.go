package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run the containerized linter",
	Long: `Run the configured lint service as a one-shot task in an isolated,
reproducible container. The container is removed afterward regardless of
the lint result. This is what the installed pre-commit hook invokes.`,
	Args: cobra.NoArgs,
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s🔍 Running lint service: %s%s\n", HeaderStyle, cfg.Lint.Service, Reset)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := launcher.Lint(ctx); err != nil {
		return err
	}

	fmt.Printf("%s✅ Lint passed%s\n", SuccessStyle, Reset)
	return nil
}
