package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apilon/apilon-landing/internal/config"
	"github.com/apilon/apilon-landing/internal/gtag"
	"github.com/apilon/apilon-landing/internal/logging"
	"github.com/apilon/apilon-landing/internal/server"
	"github.com/apilon/apilon-landing/internal/store"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the landing page server",
	Long: `Start the Apilon landing page server.

The server provides:
  - The landing page at /, with per-session experiment arms
  - Beacon endpoint and page script for interaction tracking
  - Dashboard for viewing experiment results
  - Health check and Prometheus metrics endpoints

Google Analytics is enabled when GA_MEASUREMENT_ID is set.

Example:
  apilon serve --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort(), "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func defaultPort() int {
	if p := os.Getenv("LANDING_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			return parsed
		}
	}
	return 8080
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Flags win over the environment
	cfg.Port = port
	cfg.DBPath = dbPath

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	var ga *gtag.Client
	if cfg.GAEnabled() {
		ga = gtag.New(cfg.GAEndpoint, cfg.MeasurementID, cfg.APISecret)
		ga.SetLogger(log.WithField("backend", "ga4"))
	} else {
		log.Warn("GA_MEASUREMENT_ID not set, Google Analytics disabled")
	}

	srv := server.New(s, server.Options{
		Port:          cfg.Port,
		TokenFile:     getTokenFilePath(),
		GA:            ga,
		MeasurementID: cfg.MeasurementID,
		RecordEvents:  cfg.RecordEvents,
		BeaconRPS:     cfg.BeaconRPS,
		BeaconBurst:   cfg.BeaconBurst,
		Logger:        log,
	})

	printStartup(cmd.OutOrStdout(), cfg.Port, srv.Token())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func printStartup(w io.Writer, port int, token string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Landing page: http://localhost:%d/\n", port)
	fmt.Fprintf(w, "Dashboard:    http://localhost:%d/dashboard?token=%s\n", port, token)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  results [dimension]   Show experiment statistics")
	fmt.Fprintln(w, "  sessions              List assigned sessions")
	fmt.Fprintln(w, "  export                Export recorded events")
	fmt.Fprintln(w, "  token                 Show dashboard URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
}
