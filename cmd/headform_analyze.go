package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/stl"
)

var headformAnalyzeCmd = &cobra.Command{
	Use:   "analyze <mesh.stl>",
	Short: "Measure a single headform mesh",
	Long: `Measure one ASCII STL headform and classify it.

Examples:
  mask-fitter headform analyze large_symmetry.stl
  mask-fitter headform analyze large_symmetry.stl --ratio 0.68 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHeadformAnalyze,
}

func init() {
	headformCmd.AddCommand(headformAnalyzeCmd)

	headformAnalyzeCmd.Flags().Float64("ratio", 0, "Menton-sellion share of face length (default from MENTON_SELLION_RATIO)")
	headformAnalyzeCmd.Flags().Bool("json", false, "Output as JSON")
}

// HeadformAnalysis is the JSON output of headform analyze
type HeadformAnalysis struct {
	File         string                           `json:"file"`
	Measurements measurement.HeadformMeasurements `json:"measurements"`
	Result       headform.Result                  `json:"result"`
}

func runHeadformAnalyze(cmd *cobra.Command, args []string) error {
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
	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	mesh, err := stl.ReadFile(args[0])
	if err != nil {
		return err
	}
	h, err := extractor.Extract(mesh.Vertices())
	if err != nil {
		return fmt.Errorf("measuring %s: %w", args[0], err)
	}
	h = h.Rounded()
	result, err := classifier.Classify(h.MeasurementSet)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		return outputJSON(out, HeadformAnalysis{File: args[0], Measurements: h, Result: result})
	}

	fmt.Fprintf(out, "Analyzing %s...\n\n", args[0])
	printMeasurements(cmd, h.MeasurementSet)
	fmt.Fprintf(out, "  Total Vertices:      %d\n", h.VertexCount)
	fmt.Fprintf(out, "\nClassified as %s (%d%% confidence)\n", headform.DisplayName(result.Category), result.Confidence)
	return nil
}
