package cli

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var upDetach bool

var upCmd = &cobra.Command{
	Use:   "up ENVIRONMENT",
	Short: "Build and start a named environment",
	Long: `Build and start the services of a named environment (dev, prod, docs).

In foreground mode the command blocks until the services exit or you press
Ctrl+C; containers, networks and volumes are then torn down and the engine
is pruned. With --detach the services keep running after readiness checks
pass; use 'labctl down' to stop them.`,
	Args: exactEnvironmentArg,
	RunE: runUp,
}

func init() {
	upCmd.Flags().BoolVarP(&upDetach, "detach", "d", false, "Start services in the background and wait for readiness")
}

// exactEnvironmentArg enforces a single environment argument with a usage
// error listing the known environments.
func exactEnvironmentArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		names := knownEnvironments()
		return fmt.Errorf("requires exactly one environment argument (one of: %s)", strings.Join(names, ", "))
	}
	return nil
}

func knownEnvironments() []string {
	if cfg == nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runUp(cmd *cobra.Command, args []string) error {
	name := args[0]
	env, err := cfg.Environment(name)
	if err != nil {
		return err
	}

	fmt.Printf("%s🚀 Starting environment: %s%s\n", HeaderStyle, name, Reset)
	fmt.Printf("Compose file: %s\n", env.ComposeFile)
	fmt.Printf("Services: %s\n", strings.Join(env.Services, ", "))
	if !upDetach {
		fmt.Println("Press Ctrl+C to stop and tear down")
	}
	fmt.Println()

	// Interrupts stop the compose process; teardown still runs afterward.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := launcher.Up(ctx, name, upDetach); err != nil {
		return err
	}

	if upDetach {
		fmt.Printf("%s✅ Environment %s is up%s\n", SuccessStyle, name, Reset)
	} else {
		fmt.Printf("%s✅ Environment %s stopped and cleaned up%s\n", SuccessStyle, name, Reset)
	}
	return nil
}
