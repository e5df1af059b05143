package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dangling images, stopped containers and unused volumes",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s🧹 Pruning container engine%s\n", HeaderStyle, Reset)

	if err := launcher.Prune(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("%s✅ Prune complete%s\n", SuccessStyle, Reset)
	return nil
}
