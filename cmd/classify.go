package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign a face-size category to measurements",
	Long: `Classify a face by bizygomatic breadth and menton-sellion length.

Profiles are tried in table order and the first one containing both values
wins. Faces outside every profile get a category from the aspect ratio
with a fixed confidence.

Examples:
  mask-fitter classify --bizygomatic 140 --menton-sellion 120
  mask-fitter classify --bizygomatic 128 --menton-sellion 133 --json`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Float64("bizygomatic", 0, "Bizygomatic breadth in mm (required)")
	classifyCmd.Flags().Float64("menton-sellion", 0, "Menton-sellion length in mm (required)")
	classifyCmd.Flags().Bool("json", false, "Output as JSON")
	_ = classifyCmd.MarkFlagRequired("bizygomatic")
	_ = classifyCmd.MarkFlagRequired("menton-sellion")
}

// ClassifyResult is the JSON output of the classify command
type ClassifyResult struct {
	headform.Result
	DisplayName string `json:"display_name"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	m := measurement.MeasurementSet{
		BizygomaticBreadth: mustGetFloat64(cmd, "bizygomatic"),
		MentonSellion:      mustGetFloat64(cmd, "menton-sellion"),
	}
	result, err := classifier.Classify(m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		return outputJSON(out, ClassifyResult{Result: result, DisplayName: headform.DisplayName(result.Category)})
	}

	fmt.Fprintf(out, "Category:   %s\n", headform.DisplayName(result.Category))
	fmt.Fprintf(out, "Confidence: %d%%\n", result.Confidence)
	if !result.Matched {
		fmt.Fprintln(out, "No profile contains these measurements; category chosen from the face proportions.")
	}
	return nil
}
