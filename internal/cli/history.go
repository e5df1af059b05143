package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent orchestration runs",
	Long:  `List recent orchestration runs (ups, lints, prunes) recorded in the local run journal, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if store == nil {
		return fmt.Errorf("run history is unavailable")
	}

	runs, total, err := store.ListRuns(cmd.Context(), historyLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%s📋 Run History%s (%d of %d)\n", HeaderStyle, Reset, len(runs), total)
	fmt.Println("=====================================")

	for _, run := range runs {
		status := statusStyle(run.Status) + string(run.Status) + Reset
		env := run.Environment
		if env == "" {
			env = "-"
		}

		fmt.Printf("%s  %-6s %-6s %s  exit=%d\n",
			run.StartedAt.Local().Format(time.DateTime), run.Action, env, status, run.ExitCode)
		if len(run.Services) > 0 {
			fmt.Printf("%s    services: %s%s\n", Dim, strings.Join(run.Services, ", "), Reset)
		}
		if run.Error != "" {
			fmt.Printf("%s    error: %s%s\n", ErrorStyle, run.Error, Reset)
		}
	}

	return nil
}

func statusStyle(status models.RunStatus) string {
	switch status {
	case models.RunSucceeded:
		return SuccessStyle
	case models.RunFailed:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
