// Package fitting runs the measure, classify and recommend stages and
// captures their output in an immutable Session.
package fitting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// ErrNoFace is returned when the detector reported no face in the image.
var ErrNoFace = errors.New("no face detected")

// NearestFinder looks up stored reference headforms by shape.
type NearestFinder interface {
	FindNearest(ctx context.Context, bizygomatic, mentonSellion float64, limit int) ([]database.StoredHeadform, []float64, error)
}

// Pipeline holds the read-only collaborators for a fitting run. It is safe
// for concurrent use.
type Pipeline struct {
	Landmarks  *measurement.LandmarkExtractor
	Classifier *headform.Classifier
	Catalog    *catalog.Catalog
	Nearest    NearestFinder // optional

	now func() time.Time
}

// NewPipeline builds a pipeline. nearest may be nil.
func NewPipeline(landmarks *measurement.LandmarkExtractor, classifier *headform.Classifier, cat *catalog.Catalog, nearest NearestFinder) *Pipeline {
	return &Pipeline{
		Landmarks:  landmarks,
		Classifier: classifier,
		Catalog:    cat,
		Nearest:    nearest,
		now:        time.Now,
	}
}

// Request is the input to Run.
type Request struct {
	Subject      Subject
	Measurements measurement.MeasurementSet
	// Available lists in-stock candidate IDs. Empty means no inventory
	// constraint.
	Available []string
}

// Run classifies the measurements and builds recommendations. When an
// inventory constraint leaves no candidates, the session carries the full
// category list and InventoryFallback is set.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Session, error) {
	if err := req.Subject.Validate(); err != nil {
		return nil, err
	}
	if err := req.Measurements.ValidateShape(); err != nil {
		return nil, err
	}

	result, err := p.Classifier.Classify(req.Measurements)
	if err != nil {
		return nil, fmt.Errorf("classifying: %w", err)
	}

	available := catalog.NewAvailability(req.Available)
	recommendations := p.Catalog.Filter(result.Category, available)
	fallback := false
	if len(recommendations) == 0 && available != nil {
		recommendations = p.Catalog.All(result.Category)
		fallback = true
	}

	s := &Session{
		ID:                uuid.NewString(),
		Subject:           req.Subject,
		Measurements:      req.Measurements,
		Result:            result,
		DisplayName:       headform.DisplayName(result.Category),
		Recommendations:   recommendations,
		InventoryFallback: fallback,
		CreatedAt:         p.clock().UTC(),
	}
	if profile, ok := p.Classifier.Profile(result.Category); ok {
		s.Comparison = compare(req.Measurements, profile)
	}
	s.Nearest = p.nearest(ctx, req.Measurements)

	log.Debug(log.Fields{
		"session":    s.ID,
		"category":   result.Category,
		"confidence": result.Confidence,
		"matched":    result.Matched,
		"fallback":   fallback,
	}, "fitting session built")
	return s, nil
}

// RunDetection measures the first detected face and runs the pipeline.
// It returns ErrNoFace when the detection has no faces.
func (p *Pipeline) RunDetection(ctx context.Context, det measurement.Detection, subject Subject, available []string) (*Session, error) {
	m, ok, err := p.Landmarks.Extract(det)
	if err != nil {
		return nil, fmt.Errorf("measuring landmarks: %w", err)
	}
	if !ok {
		return nil, ErrNoFace
	}
	if len(det.Faces) > 1 {
		log.Debug(log.Fields{"faces": len(det.Faces)}, "multiple faces detected, using the first")
	}
	return p.Run(ctx, Request{Subject: subject, Measurements: m, Available: available})
}

// nearest is best effort: a failed lookup leaves the session without a
// reference instead of failing the run.
func (p *Pipeline) nearest(ctx context.Context, m measurement.MeasurementSet) *Reference {
	if p.Nearest == nil {
		return nil
	}
	found, distances, err := p.Nearest.FindNearest(ctx, m.BizygomaticBreadth, m.MentonSellion, 1)
	if err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "nearest reference lookup failed")
		return nil
	}
	if len(found) == 0 {
		return nil
	}
	return &Reference{Category: found[0].Category, Distance: distances[0]}
}

func (p *Pipeline) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
