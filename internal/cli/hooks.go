package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/hooks"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage git hooks",
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install [REPO]",
	Short: "Install the pre-commit lint hook",
	Long: `Install the pre-commit hook that runs 'labctl lint' before each commit.
The hook file is fully overwritten and marked executable; re-running the
command is safe.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHooksInstall,
}

func init() {
	hooksCmd.AddCommand(hooksInstallCmd)
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) == 1 {
		repoPath = args[0]
	}

	hookPath, err := hooks.Install(repoPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s✅ Installed %s hook at: %s%s\n", SuccessStyle, hooks.HookName, hookPath, Reset)
	return nil
}
