package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/metrics"
	"github.com/fitseek/fitseek/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the streaming search API server",
	Long: `
The serve command starts the HTTP server exposing the streaming search API:
- POST /api/search/stream  runs a search and streams results as SSE
- POST /api/search/cancel  flags a running search for cancellation
- GET  /api/status         reports in-flight searches

Example:
  fitseek serve                 # Start with defaults (localhost:8090)
  fitseek serve --port 8080     # Use custom port
`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host to bind the server (overrides FITSEEK_HOST)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to bind the server (overrides FITSEEK_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[serve] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveHost != "" {
		cfg.ServerHost = serveHost
	}
	if servePort != 0 {
		cfg.ServerPort = servePort
	}

	shutdownTelemetry := initTelemetry(cfg, metrics.ModeServe, logger)
	defer shutdownTelemetry()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	orchestrator, chrome, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chrome.Close()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Printf("Received signal: %v", sig)
		cancel()
	}()

	return server.New(cfg, orchestrator, logger).Run(ctx)
}
