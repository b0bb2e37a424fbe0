package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web app and API",
	Long: `Start the HTTP server: the history page on /, the JSON API under /api,
Prometheus metrics on /metrics.

Examples:
  echonote serve              # Listen on PORT (default 5000)
  echonote serve --port 8080  # Override the port`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
	}()

	server := web.NewServer(web.Config{
		Addr:            cfg.Server.Addr(),
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, app.Uploads, app.Repo, app.Collector.Handler(), logger)

	fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://localhost:%d\n", cfg.Server.Port)
	return server.Start(ctx)
}
