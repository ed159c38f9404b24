package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

var measureCmd = &cobra.Command{
	Use:   "measure <landmarks.json|->",
	Short: "Measure a face from detector landmarks",
	Long: `Convert a face-mesh landmark detection into millimetre measurements.

The input is the detector output: image width and height plus one landmark
list per face. Only the first face is measured.

Examples:
  # Measure with the default calibration
  mask-fitter measure face.json

  # Read from stdin with a custom calibration
  detector photo.jpg | mask-fitter measure --mm-per-pixel 0.8 -`,
	Args: cobra.ExactArgs(1),
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().Float64("mm-per-pixel", 0, "Calibration in millimetres per pixel (default from CALIBRATION_MM_PER_PIXEL)")
	measureCmd.Flags().Bool("json", false, "Output as JSON")
}

func runMeasure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mmPerPixel := mustGetFloat64(cmd, "mm-per-pixel")
	if mmPerPixel == 0 {
		mmPerPixel = cfg.Measurement.MMPerPixel
	}

	det, err := readDetection(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	extractor, err := measurement.NewLandmarkExtractor(mmPerPixel)
	if err != nil {
		return err
	}

	m, ok, err := extractor.Extract(det)
	if err != nil {
		return fmt.Errorf("measuring landmarks: %w", err)
	}
	if !ok {
		return fitting.ErrNoFace
	}

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		return outputJSON(out, m)
	}
	printMeasurements(cmd, m)
	if len(det.Faces) > 1 {
		fmt.Fprintf(out, "\n%d faces detected, measured the first\n", len(det.Faces))
	}
	return nil
}

func printMeasurements(cmd *cobra.Command, m measurement.MeasurementSet) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Measurements:")
	fmt.Fprintf(out, "  Bizygomatic Breadth: %.1f mm\n", m.BizygomaticBreadth)
	fmt.Fprintf(out, "  Menton-Sellion:      %.1f mm\n", m.MentonSellion)
	fmt.Fprintf(out, "  Face Width:          %.1f mm\n", m.FaceWidth)
	fmt.Fprintf(out, "  Face Length:         %.1f mm\n", m.FaceLength)
	if m.HasDepth() {
		fmt.Fprintf(out, "  Face Depth:          %.1f mm\n", m.FaceDepth)
	}
}
