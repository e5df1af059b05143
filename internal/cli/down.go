package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down ENVIRONMENT",
	Short: "Tear down a named environment",
	Long:  `Stop and remove the containers, networks and volumes of a named environment, then prune the engine.`,
	Args:  exactEnvironmentArg,
	RunE:  runDown,
}

func runDown(cmd *cobra.Command, args []string) error {
	name := args[0]

	fmt.Printf("%s🛑 Tearing down environment: %s%s\n", HeaderStyle, name, Reset)

	if err := launcher.Down(cmd.Context(), name); err != nil {
		return err
	}

	fmt.Printf("%s✅ Environment %s torn down%s\n", SuccessStyle, name, Reset)
	return nil
}
