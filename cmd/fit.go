package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/overlay"
)

var fitCmd = &cobra.Command{
	Use:   "fit [landmarks.json|-]",
	Short: "Run a full fitting session",
	Long: `Measure, classify and recommend respirators in one step.

Input is either a landmark detection file or measurements given as flags.
When --available limits the inventory and nothing in the category is in
stock, the full category list is shown instead with a notice.

With --save the session is stored in PostgreSQL (DATABASE_URL) and the
nearest stored reference headform is reported.

Examples:
  # From a detection, rendering the landmark overlay
  mask-fitter fit face.json --overlay-image photo.jpg --overlay-output overlay.png

  # From measurements taken by hand
  mask-fitter fit --bizygomatic 138 --menton-sellion 118 --face-length 182

  # Store the session for a named subject
  mask-fitter fit face.json --name "Jane Doe" --dob 1990-04-01 --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().Float64("bizygomatic", 0, "Bizygomatic breadth in mm (instead of a landmark file)")
	fitCmd.Flags().Float64("menton-sellion", 0, "Menton-sellion length in mm")
	fitCmd.Flags().Float64("face-width", 0, "Face width in mm (defaults to bizygomatic breadth)")
	fitCmd.Flags().Float64("face-length", 0, "Face length in mm (optional, reported only)")
	fitCmd.Flags().String("name", "", "Subject name")
	fitCmd.Flags().String("dob", "", "Subject date of birth (YYYY-MM-DD)")
	fitCmd.Flags().StringSlice("available", nil, "In-stock models as \"Brand Model - Size\"")
	fitCmd.Flags().String("overlay-image", "", "Photo the landmarks were detected on")
	fitCmd.Flags().String("overlay-output", "overlay.png", "Where to write the landmark overlay PNG")
	fitCmd.Flags().Int("overlay-max-size", 800, "Longest side of the overlay in pixels")
	fitCmd.Flags().Bool("save", false, "Store the session in PostgreSQL")
	fitCmd.Flags().Bool("json", false, "Output as JSON")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	save := mustGetBool(cmd, "save")
	var nearest fitting.NearestFinder
	if save {
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL environment variable is required for --save")
		}
		pool, headformRepo, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		nearest = headformRepo
	}

	pipeline, err := newPipeline(cfg, nearest)
	if err != nil {
		return err
	}

	subject := fitting.Subject{Name: mustGetString(cmd, "name"), DateOfBirth: mustGetString(cmd, "dob")}
	available := mustGetStringSlice(cmd, "available")

	var (
		session *fitting.Session
		det     *measurement.Detection
	)
	if len(args) == 1 {
		d, err := readDetection(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		det = &d
		session, err = pipeline.RunDetection(ctx, d, subject, available)
		if err != nil {
			return err
		}
	} else {
		m, err := measurementsFromFlags(cmd)
		if err != nil {
			return err
		}
		session, err = pipeline.Run(ctx, fitting.Request{Subject: subject, Measurements: m, Available: available})
		if err != nil {
			return err
		}
	}

	if save {
		fits, err := database.GetFitRecordWriter(ctx)
		if err != nil {
			return err
		}
		if err := fits.SaveFit(ctx, session.Record()); err != nil {
			return fmt.Errorf("saving fitting session: %w", err)
		}
	}

	overlayPath := ""
	if img := mustGetString(cmd, "overlay-image"); img != "" {
		if det == nil {
			return errors.New("--overlay-image needs a landmark file")
		}
		overlayPath = mustGetString(cmd, "overlay-output")
		if err := writeOverlay(img, overlayPath, *det, mustGetInt(cmd, "overlay-max-size")); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		return outputJSON(out, session)
	}
	printSession(out, session)
	if save {
		fmt.Fprintf(out, "\nSession saved as %s\n", session.ID)
	}
	if overlayPath != "" {
		fmt.Fprintf(out, "Overlay written to %s\n", overlayPath)
	}
	return nil
}

func measurementsFromFlags(cmd *cobra.Command) (measurement.MeasurementSet, error) {
	bizyg := mustGetFloat64(cmd, "bizygomatic")
	if bizyg == 0 {
		return measurement.MeasurementSet{}, errors.New("either a landmark file or --bizygomatic and --menton-sellion are required")
	}
	width := mustGetFloat64(cmd, "face-width")
	if width == 0 {
		width = bizyg
	}
	m := measurement.MeasurementSet{
		BizygomaticBreadth: bizyg,
		MentonSellion:      mustGetFloat64(cmd, "menton-sellion"),
		FaceWidth:          width,
		FaceLength:         mustGetFloat64(cmd, "face-length"),
	}
	if err := m.ValidateShape(); err != nil {
		return measurement.MeasurementSet{}, err
	}
	return m, nil
}

func writeOverlay(imagePath, outputPath string, det measurement.Detection, maxSize int) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", imagePath, err)
	}
	defer f.Close()

	src, err := overlay.Decode(f)
	if err != nil {
		return err
	}
	opts := overlay.DefaultOptions()
	opts.MaxSize = maxSize
	img, err := overlay.Render(src, det, opts)
	if err != nil {
		return err
	}
	data, err := overlay.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

func printSession(out io.Writer, s *fitting.Session) {
	if s.Subject.Name != "" {
		fmt.Fprintf(out, "Subject: %s\n\n", s.Subject.Name)
	}
	fmt.Fprintln(out, "Measurements:")
	fmt.Fprintf(out, "  Bizygomatic Breadth: %.1f mm\n", s.Measurements.BizygomaticBreadth)
	fmt.Fprintf(out, "  Menton-Sellion:      %.1f mm\n", s.Measurements.MentonSellion)
	fmt.Fprintf(out, "  Face Length:         %.1f mm\n", s.Measurements.FaceLength)

	fmt.Fprintf(out, "\nFace size: %s (%d%% confidence)\n", s.DisplayName, s.Result.Confidence)
	for _, c := range s.Comparison {
		mark := "within"
		if !c.Within {
			mark = "outside"
		}
		fmt.Fprintf(out, "  %-20s %.1f mm, %s %.0f-%.0f mm\n", c.Measurement, c.Value, mark, c.Range.Min, c.Range.Max)
	}
	if s.Nearest != nil {
		fmt.Fprintf(out, "  Nearest reference headform: %s (%.1f mm away)\n", s.Nearest.Category, s.Nearest.Distance)
	}

	fmt.Fprintln(out, "\nRecommended respirators:")
	if s.InventoryFallback {
		fmt.Fprintln(out, "  None of the stocked models fit this category; showing the full list.")
	}
	printCandidates(out, s.Recommendations)
}
