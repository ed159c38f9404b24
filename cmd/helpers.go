package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/database/postgres"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// outputJSON writes data as indented JSON.
func outputJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// readDetection loads a landmark detection from a JSON file, or from stdin
// when path is "-".
func readDetection(path string, stdin io.Reader) (measurement.Detection, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return measurement.Detection{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var det measurement.Detection
	if err := json.NewDecoder(r).Decode(&det); err != nil {
		return measurement.Detection{}, fmt.Errorf("decoding landmarks from %s: %w", path, err)
	}
	return det, nil
}

// newClassifier builds the classifier from the configured profile table.
func newClassifier(cfg *config.Config) (*headform.Classifier, error) {
	profiles, err := headform.FromConfig(cfg.Headforms)
	if err != nil {
		return nil, fmt.Errorf("loading headform profiles: %w", err)
	}
	return headform.NewClassifier(profiles)
}

// newPipeline wires the fitting pipeline from configuration. nearest may be nil.
func newPipeline(cfg *config.Config, nearest fitting.NearestFinder) (*fitting.Pipeline, error) {
	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	landmarks, err := measurement.NewLandmarkExtractor(cfg.Measurement.MMPerPixel)
	if err != nil {
		return nil, err
	}
	return fitting.NewPipeline(landmarks, classifier, cat, nearest), nil
}

// openStorage connects to PostgreSQL, applies migrations and registers the
// repositories with the database package.
func openStorage(ctx context.Context, cfg *config.Config) (*postgres.Pool, *postgres.HeadformRepository, error) {
	pool, err := postgres.Initialize(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	headformRepo := postgres.NewHeadformRepository(pool)
	fitRepo := postgres.NewFitRecordRepository(pool)
	database.RegisterPostgresBackend(
		func() database.HeadformReader { return headformRepo },
		func() database.HeadformWriter { return headformRepo },
		func() database.FitRecordWriter { return fitRepo },
	)
	database.RegisterHeadformHNSWRebuilder(headformRepo)
	log.Debug(nil, "PostgreSQL backend registered")
	return pool, headformRepo, nil
}
