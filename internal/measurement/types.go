// Package measurement turns raw facial geometry into anthropometric measurements.
// Two sources are supported: a 2D landmark set from a face detector and a 3D
// headform vertex cloud. All values are millimetres.
package measurement

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidMeasurement is returned when a measurement set fails validation.
	ErrInvalidMeasurement = errors.New("invalid measurement")

	// ErrEmptyMesh is returned when a vertex cloud has no vertices.
	ErrEmptyMesh = errors.New("mesh has no vertices")

	// ErrDegenerateMesh is returned when a vertex cloud has no usable extent,
	// for example a flat sheet or a single point, or when its spans overflow.
	ErrDegenerateMesh = errors.New("mesh has no measurable extent")

	// ErrNonFiniteVertex is returned when a vertex has a NaN or infinite coordinate.
	ErrNonFiniteVertex = errors.New("mesh vertex is not finite")

	// ErrMissingLandmark is returned when a landmark set lacks a required anatomical index.
	ErrMissingLandmark = errors.New("required landmark missing")

	// ErrInvalidCalibration is returned for a non-positive or non-finite mm-per-pixel constant.
	ErrInvalidCalibration = errors.New("calibration must be a positive finite number")

	// ErrInvalidImageSize is returned when image dimensions are not positive.
	ErrInvalidImageSize = errors.New("image width and height must be positive")
)

// MeasurementSet holds the facial measurements used for classification.
// FaceDepth is zero when the source cannot measure it (landmark path).
type MeasurementSet struct {
	BizygomaticBreadth float64 `json:"bizygomatic_breadth"`
	MentonSellion      float64 `json:"menton_sellion"`
	FaceWidth          float64 `json:"face_width"`
	FaceLength         float64 `json:"face_length"`
	FaceDepth          float64 `json:"face_depth,omitempty"`
}

// New builds a validated MeasurementSet.
func New(bizygomatic, mentonSellion, faceWidth, faceLength, faceDepth float64) (MeasurementSet, error) {
	m := MeasurementSet{
		BizygomaticBreadth: bizygomatic,
		MentonSellion:      mentonSellion,
		FaceWidth:          faceWidth,
		FaceLength:         faceLength,
		FaceDepth:          faceDepth,
	}
	if err := m.Validate(); err != nil {
		return MeasurementSet{}, err
	}
	return m, nil
}

// Validate checks that every required value is finite and positive and that
// the optional depth is finite and not negative.
func (m MeasurementSet) Validate() error {
	required := []struct {
		name  string
		value float64
	}{
		{"bizygomatic_breadth", m.BizygomaticBreadth},
		{"menton_sellion", m.MentonSellion},
		{"face_width", m.FaceWidth},
		{"face_length", m.FaceLength},
	}
	for _, f := range required {
		if !isFinite(f.value) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidMeasurement, f.name, f.value)
		}
	}
	if !isFinite(m.FaceDepth) || m.FaceDepth < 0 {
		return fmt.Errorf("%w: face_depth must not be negative, got %v", ErrInvalidMeasurement, m.FaceDepth)
	}
	return nil
}

// ValidateShape checks the two values classification needs: bizygomatic
// breadth and menton-sellion must be finite and positive. The remaining
// fields may be zero (not supplied) but must be finite and not negative.
func (m MeasurementSet) ValidateShape() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"bizygomatic_breadth", m.BizygomaticBreadth},
		{"menton_sellion", m.MentonSellion},
	} {
		if !isFinite(f.value) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidMeasurement, f.name, f.value)
		}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"face_width", m.FaceWidth},
		{"face_length", m.FaceLength},
		{"face_depth", m.FaceDepth},
	} {
		if !isFinite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidMeasurement, f.name, f.value)
		}
	}
	return nil
}

// HasDepth reports whether FaceDepth was measured.
func (m MeasurementSet) HasDepth() bool {
	return m.FaceDepth > 0
}

// Rounded returns a copy with every value rounded to one decimal place.
func (m MeasurementSet) Rounded() MeasurementSet {
	return MeasurementSet{
		BizygomaticBreadth: round1(m.BizygomaticBreadth),
		MentonSellion:      round1(m.MentonSellion),
		FaceWidth:          round1(m.FaceWidth),
		FaceLength:         round1(m.FaceLength),
		FaceDepth:          round1(m.FaceDepth),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
