package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "apilon",
	Short: "Apilon landing page server with built-in A/B experiments",
	Long: `Apilon serves the marketing landing page, buckets every visitor into
experiment arms and reports interactions to Google Analytics.

Running without a subcommand starts the server (same as 'apilon serve').`,
	RunE:         runServe, // Default action is to start server
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("LANDING_DB_PATH", "./apilon.db"), "database path")
	rootCmd.Flags().IntVarP(&port, "port", "p", defaultPort(), "port to listen on")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
