package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apilon/apilon-landing/internal/store"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List assigned sessions",
	Long:  `List the most recent sessions with the experiment arms they were assigned.`,
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "maximum number of sessions (0 for all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		total, err := s.CountSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if total == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Sessions are assigned when visitors open the landing page.")
			return nil
		}

		sessions, err := s.ListAssignments(ctx, sessionsLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		// Print table
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tHEADLINE\tCTA COLOR\tFEATURES\tSOCIAL PROOF\tCREATED")
		for _, sess := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				sess.SessionID,
				sess.HeroHeadline,
				sess.CTAColor,
				sess.FeatureOrder,
				sess.SocialProofPosition,
				sess.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		fmt.Fprintln(out)
		fmt.Fprintf(out, "Showing %d of %s sessions\n", len(sessions), formatNumber(total))
		return nil
	})
}
