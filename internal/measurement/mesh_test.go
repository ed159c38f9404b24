package measurement

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestMeshExtractor_BoundingBox(t *testing.T) {
	e, err := NewMeshExtractor(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vertices := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 5, Z: 20},
		{X: 2, Y: 1, Z: 10},
		{X: 8, Y: 4, Z: 10},
	}

	h, err := e.Extract(vertices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"face_width", h.FaceWidth, 10},
		{"face_depth", h.FaceDepth, 5},
		{"face_length", h.FaceLength, 20},
		{"menton_sellion", h.MentonSellion, 14},
		// Only the two mid-height vertices sit in the cheek band.
		{"bizygomatic_breadth", h.BizygomaticBreadth, 6},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if h.VertexCount != 4 {
		t.Errorf("VertexCount = %d, want 4", h.VertexCount)
	}
	if h.Center != (r3.Vector{X: 5, Y: 2.5, Z: 10}) {
		t.Errorf("Center = %v, want (5, 2.5, 10)", h.Center)
	}
}

func TestMeshExtractor_CheekBandInclusive(t *testing.T) {
	e, _ := NewMeshExtractor(0)

	// Length 60, center z=30, band [20, 40]. Vertices at exactly 20 and 40 count.
	vertices := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 100, Y: 0, Z: 60},
		{X: 30, Y: 0, Z: 20},
		{X: 70, Y: 0, Z: 40},
	}

	h, err := e.Extract(vertices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.BizygomaticBreadth != 40 {
		t.Errorf("bizygomatic_breadth = %v, want 40", h.BizygomaticBreadth)
	}
}

func TestMeshExtractor_EmptyBandFallsBackToWidth(t *testing.T) {
	e, _ := NewMeshExtractor(0)

	vertices := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 12, Y: 3, Z: 60},
	}

	h, err := e.Extract(vertices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.BizygomaticBreadth != h.FaceWidth {
		t.Errorf("expected breadth to fall back to face width %v, got %v", h.FaceWidth, h.BizygomaticBreadth)
	}
}

func TestMeshExtractor_CustomRatio(t *testing.T) {
	e, err := NewMeshExtractor(0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, err := e.Extract([]r3.Vector{{Z: 0}, {X: 1, Z: 20}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MentonSellion != 10 {
		t.Errorf("menton_sellion = %v, want 10", h.MentonSellion)
	}
}

func TestMeshExtractor_Errors(t *testing.T) {
	e, _ := NewMeshExtractor(0)

	if _, err := e.Extract(nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}

	_, err := e.Extract([]r3.Vector{{X: 1}, {X: math.NaN()}})
	if !errors.Is(err, ErrNonFiniteVertex) {
		t.Errorf("expected ErrNonFiniteVertex, got %v", err)
	}

	if _, err := NewMeshExtractor(-0.7); !errors.Is(err, ErrInvalidMeasurement) {
		t.Errorf("expected ErrInvalidMeasurement for negative ratio, got %v", err)
	}
}

func TestMeshExtractor_Degenerate(t *testing.T) {
	e, _ := NewMeshExtractor(0)

	tests := []struct {
		name     string
		vertices []r3.Vector
	}{
		{name: "single vertex", vertices: []r3.Vector{{X: 1, Y: 2, Z: 3}}},
		{name: "no height", vertices: []r3.Vector{{X: 0, Z: 5}, {X: 140, Y: 10, Z: 5}}},
		{name: "no width", vertices: []r3.Vector{{X: 3, Z: 0}, {X: 3, Y: 10, Z: 170}}},
		{name: "span overflows", vertices: []r3.Vector{{X: -1e308, Z: 0}, {X: 1e308, Z: 170}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := e.Extract(tt.vertices)
			if !errors.Is(err, ErrDegenerateMesh) {
				t.Fatalf("expected ErrDegenerateMesh, got %v (%+v)", err, h)
			}
			if !errors.Is(err, ErrInvalidMeasurement) {
				t.Errorf("expected the measurement error to be wrapped, got %v", err)
			}
		})
	}
}

func TestHeadformMeasurements_Rounded(t *testing.T) {
	h := HeadformMeasurements{
		MeasurementSet: MeasurementSet{BizygomaticBreadth: 141.26, MentonSellion: 118.33},
		VertexCount:    1234,
	}

	r := h.Rounded()
	if r.BizygomaticBreadth != 141.3 || r.MentonSellion != 118.3 {
		t.Errorf("Rounded() = %+v", r.MeasurementSet)
	}
	if r.VertexCount != 1234 {
		t.Errorf("VertexCount changed: %d", r.VertexCount)
	}
}
