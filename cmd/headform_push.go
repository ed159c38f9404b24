package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/reference"
)

var headformPushCmd = &cobra.Command{
	Use:   "push <references.json>",
	Short: "Store a reference table in PostgreSQL",
	Long: `Store the measured reference headforms in PostgreSQL so fitting sessions
can report the nearest reference headform.

Requires DATABASE_URL. Existing entries for the same category are replaced.

Examples:
  mask-fitter headform push headform_references.json
  mask-fitter headform push headform_references.json --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runHeadformPush,
}

func init() {
	headformCmd.AddCommand(headformPushCmd)

	headformPushCmd.Flags().Bool("dry-run", false, "Show what would be stored without writing")
}

func runHeadformPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := reference.LoadJSON(args[0])
	if err != nil {
		return err
	}
	headforms := table.Headforms()
	out := cmd.OutOrStdout()

	if mustGetBool(cmd, "dry-run") {
		fmt.Fprintf(out, "DRY RUN - would store %d reference headforms:\n", len(headforms))
		for _, h := range headforms {
			fmt.Fprintf(out, "  %s (%.1f x %.1f mm)\n", h.Category, h.BizygomaticBreadth, h.MentonSellion)
		}
		return nil
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, _, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	writer, err := database.GetHeadformWriter(ctx)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(headforms),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Storing headforms"),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
	)
	for _, h := range headforms {
		if err := writer.Save(ctx, h); err != nil {
			return fmt.Errorf("storing %s: %w", h.Category, err)
		}
		bar.Add(1)
	}
	bar.Finish()

	count, err := writer.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStored %d reference headforms (%d in database)\n", len(headforms), count)
	return nil
}
