// Package simplify decimates dense headform meshes by vertex sampling.
//
// This is stride sampling, not quadric decimation: every stride-th vertex is
// kept and consecutive triples of the kept vertices become triangles. The
// output is a visual approximation for lightweight rendering only and is not
// suitable for measurement.
package simplify

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/kozaktomas/mask-fitter/internal/stl"
)

// DefaultTarget is the vertex budget used when none is configured.
const DefaultTarget = 10000

// degenerateEpsilon is the cross-product magnitude below which a triangle is
// treated as having no area.
const degenerateEpsilon = 1e-8

// ErrInvalidTarget is returned for a non-positive vertex target.
var ErrInvalidTarget = errors.New("target vertex count must be positive")

// fallbackNormal is assigned to zero-area triangles.
var fallbackNormal = r3.Vector{Z: 1}

// Stats describes one simplification run.
type Stats struct {
	InputVertices int `json:"input_vertices"`
	Sampled       int `json:"sampled_vertices"`
	Stride        int `json:"stride"`
	Triangles     int `json:"triangles"`
	Degenerate    int `json:"degenerate"`
}

// Simplify samples vertices at stride max(1, len(vertices)/target) and groups
// consecutive triples into triangles. One or two trailing sampled vertices that
// cannot form a triangle are dropped.
func Simplify(vertices []r3.Vector, target int) ([]stl.Triangle, Stats, error) {
	if target <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}

	stride := max(1, len(vertices)/target)
	stats := Stats{InputVertices: len(vertices), Stride: stride}

	sampled := make([]r3.Vector, 0, len(vertices)/stride+1)
	for i := 0; i < len(vertices); i += stride {
		sampled = append(sampled, vertices[i])
	}
	stats.Sampled = len(sampled)

	triangles := make([]stl.Triangle, 0, len(sampled)/3)
	for i := 0; i+2 < len(sampled); i += 3 {
		v1, v2, v3 := sampled[i], sampled[i+1], sampled[i+2]
		n, ok := Normal(v1, v2, v3)
		if !ok {
			stats.Degenerate++
		}
		triangles = append(triangles, stl.Triangle{
			Normal:   n,
			Vertices: [3]r3.Vector{v1, v2, v3},
		})
	}
	stats.Triangles = len(triangles)

	return triangles, stats, nil
}

// Normal returns the unit normal of the triangle (v1, v2, v3) computed as
// cross(v2-v1, v3-v1) / (|cross| + 1e-8). For a zero-area triangle, or one
// whose cross product is not finite, it returns +Z and false.
func Normal(v1, v2, v3 r3.Vector) (r3.Vector, bool) {
	cross := v2.Sub(v1).Cross(v3.Sub(v1))
	norm := cross.Norm()
	if math.IsNaN(norm) || math.IsInf(norm, 0) || norm < degenerateEpsilon {
		return fallbackNormal, false
	}
	return cross.Mul(1 / (norm + degenerateEpsilon)), true
}

// Mesh simplifies src and wraps the result in a mesh named "simplified".
func Mesh(src *stl.Mesh, target int) (*stl.Mesh, Stats, error) {
	triangles, stats, err := Simplify(src.Vertices(), target)
	if err != nil {
		return nil, stats, err
	}
	return &stl.Mesh{Name: "simplified", Triangles: triangles}, stats, nil
}
