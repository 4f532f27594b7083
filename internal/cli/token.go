package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var serverURL string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show dashboard URL with access token",
	Long: `Show the dashboard URL with your access token.

Use this when you've scrolled past the startup message or need to
share the dashboard link.

Example:
  apilon token
  apilon token --url https://apilon.dev`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&serverURL, "url", "", "public server URL (default http://localhost:<port>)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(getTokenFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no server running. Start with: apilon")
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("token file is empty. Restart the server with: apilon")
	}

	base := serverURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", defaultPort())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard: %s/dashboard?token=%s\n", strings.TrimRight(base, "/"), token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tip: Bookmark this URL or run 'apilon token' anytime.")
	return nil
}
