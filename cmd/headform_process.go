package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/reference"
)

var headformProcessCmd = &cobra.Command{
	Use:   "process <directory>",
	Short: "Measure all reference headforms in a directory",
	Long: `Measure every reference headform found in a directory and write the
reference table as JSON.

Expected files:
  small_symmetry.stl, medium_symmetry.stl, large_symmetry.stl,
  long_narrow_symmetry.stl, short_wide_symmetry.stl

Missing files are skipped with a warning. A file that cannot be parsed
stops the run.

Examples:
  mask-fitter headform process ./headforms
  mask-fitter headform process ./headforms --output refs.json`,
	Args: cobra.ExactArgs(1),
	RunE: runHeadformProcess,
}

func init() {
	headformCmd.AddCommand(headformProcessCmd)

	headformProcessCmd.Flags().String("output", "headform_references.json", "Where to write the reference table")
	headformProcessCmd.Flags().Float64("ratio", 0, "Menton-sellion share of face length (default from MENTON_SELLION_RATIO)")
	headformProcessCmd.Flags().Bool("json", false, "Print the table as JSON instead of a summary")
}

func runHeadformProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ratio := mustGetFloat64(cmd, "ratio")
	if ratio == 0 {
		ratio = cfg.Measurement.MentonSellionRatio
	}
	extractor, err := measurement.NewMeshExtractor(ratio)
	if err != nil {
		return err
	}
	jsonOutput := mustGetBool(cmd, "json")
	output := mustGetString(cmd, "output")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Create progress bar (only for non-JSON output)
	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(reference.ExpectedFiles),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Measuring headforms"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("meshes"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	var missing []string
	table, err := reference.Process(ctx, args[0], extractor, func(res reference.Result) {
		if !res.Found {
			missing = append(missing, res.File.Name)
		}
		if bar != nil {
			bar.Add(1)
		}
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := reference.SaveJSON(output, table); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return table.Encode(out)
	}

	fmt.Fprintln(out)
	for _, category := range table.Categories() {
		r := table[category]
		fmt.Fprintf(out, "%-12s bizygomatic %.1f mm, menton-sellion %.1f mm, %d vertices\n",
			category, r.BizygomaticBreadth, r.MentonSellion, r.VertexCount)
	}
	for _, name := range missing {
		fmt.Fprintf(out, "Warning: %s not found\n", name)
	}
	fmt.Fprintf(out, "\nReference data saved to %s\n", output)
	return nil
}
