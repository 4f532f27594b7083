package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apilon/apilon-landing/internal/experiment"
)

var assignCmd = &cobra.Command{
	Use:   "assign <session-id>",
	Short: "Show the arms a session id is bucketed into",
	Long: `Derive experiment arms for a session id without touching the database.

Useful for reproducing what a visitor saw. Example:
  apilon assign 3f1c2a9e-0d4b-4d7e-9c61-2b8f5e7a1c30`,
	Args: cobra.ExactArgs(1),
	RunE: runAssign,
}

func init() {
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	id := args[0]
	a := experiment.Derive(id)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SESSION\t%s\n", a.SessionID)
	fmt.Fprintf(w, "HASH\t%d\n", experiment.Hash(id))
	for _, d := range experiment.Dimensions {
		fmt.Fprintf(w, "%s\t%s\n", d, a.Arm(d))
	}
	return w.Flush()
}
