package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/api"
	"github.com/dashlab/labctl/internal/logger"
	"github.com/dashlab/labctl/internal/scheduler"
)

var (
	servePort  string
	serveHost  string
	corsOrigin string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the labctl status API server",
	Long: `Start the status API server:
- GET /api/v1/health                          - Health check
- GET /api/v1/environments                    - Configured environments
- GET /api/v1/environments/:name/services     - Service states (compose ps)
- GET /api/v1/runs                            - Run history
- GET /api/v1/runs/:id                        - Single run
- /docs                                       - Built documentation

While the server runs, the maintenance scheduler prunes dangling images,
containers and volumes on the configured cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on (default from config)")
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Host to bind the API server to (default from config)")
	serveCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
}

func runServe(cmd *cobra.Command, args []string) error {
	host := serveHost
	if host == "" {
		host = cfg.Server.Host
	}
	port := servePort
	if port == "" {
		port = cfg.Server.Port
	}
	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		if cfg.Server.CORSOrigin != "" {
			selectedCORSOrigin = cfg.Server.CORSOrigin
		} else {
			selectedCORSOrigin = "*"
		}
	}

	fmt.Printf("🚀 Starting Labctl Status Server\n")
	fmt.Printf("================================\n")
	fmt.Printf("Host: %s\n", host)
	fmt.Printf("Port: %s\n", port)
	fmt.Printf("URL: http://%s:%s/api/v1\n", host, port)
	fmt.Println()

	server := api.NewServer(cfg, store, selectedCORSOrigin)

	sched := scheduler.New(launcher, cfg.Maintenance.PruneCron)
	if err := sched.Start(); err != nil {
		logger.Warning("maintenance scheduler not started: %v", err)
	} else {
		defer sched.Stop()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(fmt.Sprintf("%s:%s", host, port))
	}()

	fmt.Println("🌐 Status server is running! Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		fmt.Println("\n🛑 Shutting down status server...")
		return nil
	case err := <-errCh:
		return err
	}
}
