package measurement

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// DefaultMentonSellionRatio approximates menton-sellion as a share of total face length.
// It is a heuristic; headform geometry does not locate the sellion directly.
const DefaultMentonSellionRatio = 0.7

// cheekBandDivisor selects the band [center-L/6, center+L/6] around mid height.
const cheekBandDivisor = 6.0

// HeadformMeasurements is the result of measuring a headform vertex cloud.
type HeadformMeasurements struct {
	MeasurementSet
	Center      r3.Vector `json:"-"`
	VertexCount int       `json:"vertex_count"`
}

// Rounded rounds the millimetre values to one decimal place.
func (h HeadformMeasurements) Rounded() HeadformMeasurements {
	h.MeasurementSet = h.MeasurementSet.Rounded()
	return h
}

// MeshExtractor measures headforms with axes X = left-right, Y = front-back, Z = vertical.
type MeshExtractor struct {
	MentonSellionRatio float64
}

// NewMeshExtractor returns an extractor using ratio for menton-sellion.
// A zero ratio selects DefaultMentonSellionRatio.
func NewMeshExtractor(ratio float64) (*MeshExtractor, error) {
	if ratio == 0 {
		ratio = DefaultMentonSellionRatio
	}
	if !isFinite(ratio) || ratio <= 0 {
		return nil, fmt.Errorf("%w: menton-sellion ratio must be positive, got %v", ErrInvalidMeasurement, ratio)
	}
	return &MeshExtractor{MentonSellionRatio: ratio}, nil
}

// Extract computes bounding-box and cheek-band measurements from vertices.
func (e *MeshExtractor) Extract(vertices []r3.Vector) (HeadformMeasurements, error) {
	if len(vertices) == 0 {
		return HeadformMeasurements{}, ErrEmptyMesh
	}

	lo, hi, err := bounds(vertices)
	if err != nil {
		return HeadformMeasurements{}, err
	}

	width := hi.X - lo.X
	depth := hi.Y - lo.Y
	length := hi.Z - lo.Z
	center := lo.Add(hi).Mul(0.5)

	breadth := width
	bandLo := center.Z - length/cheekBandDivisor
	bandHi := center.Z + length/cheekBandDivisor
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, v := range vertices {
		if v.Z < bandLo || v.Z > bandHi {
			continue
		}
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
	}
	if minX <= maxX {
		breadth = maxX - minX
	}

	ratio := e.MentonSellionRatio
	if ratio == 0 {
		ratio = DefaultMentonSellionRatio
	}

	m := MeasurementSet{
		BizygomaticBreadth: breadth,
		MentonSellion:      length * ratio,
		FaceWidth:          width,
		FaceLength:         length,
		FaceDepth:          depth,
	}
	if err := m.Validate(); err != nil {
		return HeadformMeasurements{}, fmt.Errorf("%w: %w", ErrDegenerateMesh, err)
	}

	return HeadformMeasurements{
		MeasurementSet: m,
		Center:         center,
		VertexCount:    len(vertices),
	}, nil
}

// bounds returns the component-wise minimum and maximum of vertices.
func bounds(vertices []r3.Vector) (r3.Vector, r3.Vector, error) {
	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i, v := range vertices {
		if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
			return lo, hi, fmt.Errorf("%w: vertex %d = %v", ErrNonFiniteVertex, i, v)
		}
		lo = r3.Vector{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vector{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return lo, hi, nil
}
