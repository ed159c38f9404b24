package headform

import (
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// Confidence bounds applied to every result.
const (
	MinConfidence = 60
	MaxConfidence = 99
)

// Fallback ladder thresholds and confidences.
const (
	longNarrowRatio      = 1.0
	shortWideRatio       = 0.85
	smallBreadthBelow    = 135.0
	largeBreadthAbove    = 145.0
	ratioFallbackScore   = 75
	breadthFallbackScore = 70
	mediumFallbackScore  = 80
)

// ErrNonFiniteMeasurement is returned when a measurement is NaN or infinite.
var ErrNonFiniteMeasurement = errors.New("measurement is not finite")

// Result is the outcome of classifying one measurement set.
type Result struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
	// Matched is false when no profile contained the measurements and the
	// fallback ladder chose the category.
	Matched bool `json:"matched"`
}

// Classifier assigns face-size categories. It is safe for concurrent use.
type Classifier struct {
	profiles Profiles
}

// NewClassifier returns a classifier over a validated copy of profiles.
func NewClassifier(profiles Profiles) (*Classifier, error) {
	if err := profiles.Validate(); err != nil {
		return nil, err
	}
	cp := make(Profiles, len(profiles))
	copy(cp, profiles)
	return &Classifier{profiles: cp}, nil
}

// Profiles returns a copy of the profile table in match order.
func (c *Classifier) Profiles() Profiles {
	cp := make(Profiles, len(c.profiles))
	copy(cp, c.profiles)
	return cp
}

// Profile returns the named profile.
func (c *Classifier) Profile(name string) (Profile, bool) {
	return c.profiles.Lookup(name)
}

// Classify maps measurements to a category and confidence.
//
// The first profile containing both measurements wins. Its confidence starts at
// 100 and loses the distance from the range centre on each axis, expressed as a
// percentage of the range. Without a match a fixed ladder on the aspect ratio
// and breadth decides. Confidence is always clamped to [60, 99].
func (c *Classifier) Classify(m measurement.MeasurementSet) (Result, error) {
	bizyg := m.BizygomaticBreadth
	mensell := m.MentonSellion
	if !finite(bizyg) || !finite(mensell) {
		return Result{}, fmt.Errorf("%w: bizygomatic=%v menton_sellion=%v", ErrNonFiniteMeasurement, bizyg, mensell)
	}

	for _, p := range c.profiles {
		if !p.Contains(bizyg, mensell) {
			continue
		}
		score := 100 -
			math.Abs(0.5-p.Bizygomatic.Position(bizyg))*100 -
			math.Abs(0.5-p.MentonSellion.Position(mensell))*100
		return Result{Category: p.Name, Confidence: clamp(score), Matched: true}, nil
	}

	category, score := fallback(aspectRatio(bizyg, mensell), bizyg)
	return Result{Category: category, Confidence: clamp(score), Matched: false}, nil
}

// aspectRatio is menton-sellion over breadth, 1.0 when breadth is zero.
func aspectRatio(bizyg, mensell float64) float64 {
	if bizyg == 0 {
		return 1.0
	}
	return mensell / bizyg
}

func fallback(ratio, bizyg float64) (string, float64) {
	switch {
	case ratio > longNarrowRatio:
		return CategoryLongNarrow, ratioFallbackScore
	case ratio < shortWideRatio:
		return CategoryShortWide, ratioFallbackScore
	case bizyg < smallBreadthBelow:
		return CategorySmall, breadthFallbackScore
	case bizyg > largeBreadthAbove:
		return CategoryLarge, breadthFallbackScore
	default:
		return CategoryMedium, mediumFallbackScore
	}
}

func clamp(score float64) int {
	return int(math.Round(math.Max(MinConfidence, math.Min(MaxConfidence, score))))
}
