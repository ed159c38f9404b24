package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/headform"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <category>",
	Short: "List respirators for a face-size category",
	Long: `List the curated respirator models for a category in recommendation order.

With --available only models in stock are listed. The list may be empty.

Examples:
  mask-fitter recommend medium
  mask-fitter recommend long_narrow --available "3M 9205+ Aura - Regular,3M 8210 N95 - Regular"`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringSlice("available", nil, "In-stock models as \"Brand Model - Size\" (default: no inventory limit)")
	recommendCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	category := args[0]
	candidates := cat.Filter(category, catalog.NewAvailability(mustGetStringSlice(cmd, "available")))

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		return outputJSON(out, candidates)
	}

	if len(candidates) == 0 {
		fmt.Fprintf(out, "No %s respirators available in the current inventory.\n", headform.DisplayName(category))
		return nil
	}
	printCandidates(out, candidates)
	return nil
}

func printCandidates(w io.Writer, candidates []catalog.Candidate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBRAND\tMODEL\tSIZE\tFIT SCORE")
	for i, c := range candidates {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d%%\n", i+1, c.Brand, c.Model, c.Size, c.FitScore)
	}
	tw.Flush()
}
