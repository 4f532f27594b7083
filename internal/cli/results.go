package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/apilon/apilon-landing/internal/experiment"
	"github.com/apilon/apilon-landing/internal/server"
	"github.com/apilon/apilon-landing/internal/stats"
	"github.com/apilon/apilon-landing/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results [dimension]",
	Short: "Show detailed results for an experiment dimension",
	Long: `Show per-arm sessions, conversions, conversion rates and confidence
intervals. A conversion is a CTA click labelled trial_*.

Without an argument you are asked to pick a dimension.

Dimensions: hero_headline, cta_color, feature_order, social_proof_position`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	var d experiment.Dimension
	if len(args) == 1 {
		parsed, err := experiment.ParseDimension(args[0])
		if err != nil {
			return err
		}
		d = parsed
	} else {
		picked, err := promptDimension()
		if err != nil {
			return err
		}
		d = picked
	}

	return withStore(func(s *store.SQLiteStore) error {
		armStats, err := s.ArmStats(context.Background(), d, server.ConversionPrefix)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		printResult(cmd.OutOrStdout(), stats.Analyze(d, armStats))
		return nil
	})
}

func promptDimension() (experiment.Dimension, error) {
	items := make([]string, len(experiment.Dimensions))
	for i, d := range experiment.Dimensions {
		items[i] = string(d)
	}

	prompt := promptui.Select{
		Label: "Experiment dimension",
		Items: items,
		Size:  len(items),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}
	return experiment.Dimensions[idx], nil
}

func printResult(w io.Writer, result *stats.Result) {
	// Print header
	fmt.Fprintf(w, "DIMENSION: %s\n", result.Dimension)
	fmt.Fprintf(w, "CONVERSION: CTA click labelled %s*\n", server.ConversionPrefix)
	fmt.Fprintln(w)

	// Print table header
	fmt.Fprintln(w, "ARM               SESSIONS  CONVERSIONS  RATE     95% CI")
	fmt.Fprintln(w, strings.Repeat("─", 62))

	for _, a := range result.Arms {
		indicator := ""
		if a.Index == result.LeadingArm && a.Sessions > 0 {
			indicator = " ← LEADING"
		}

		ciStr := fmt.Sprintf("[%.1f%%, %.1f%%]", a.CILower*100, a.CIUpper*100)
		if a.Sessions == 0 {
			ciStr = "N/A"
		}

		fmt.Fprintf(w, "%-16s  %-8s  %-11s  %-7s  %s%s\n",
			a.Name,
			formatNumber(a.Sessions),
			formatNumber(a.Conversions),
			formatPercent(a.Rate),
			ciStr,
			indicator,
		)
	}

	fmt.Fprintln(w)

	// Print significance message
	leadingName := result.Arms[result.LeadingArm].Name
	confPct := result.ConfidenceLevel * 100

	if result.Confident {
		fmt.Fprintf(w, "Statistical significance: %.1f%% confident \"%s\" is the winner\n", confPct, leadingName)
	} else if confPct >= 90 {
		fmt.Fprintf(w, "Statistical significance: %.1f%% confident \"%s\" beats control (not yet significant)\n", confPct, leadingName)
	} else {
		fmt.Fprintln(w, "Statistical significance: Not enough data to determine a winner")
	}
}
