package simplify

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/kozaktomas/mask-fitter/internal/stl"
)

func line(n int) []r3.Vector {
	vs := make([]r3.Vector, n)
	for i := range vs {
		// Points on a parabola so consecutive triples are never collinear.
		x := float64(i)
		vs[i] = r3.Vector{X: x, Y: x * x, Z: 0}
	}
	return vs
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		target        int
		wantStride    int
		wantTriangles int
	}{
		{name: "target above count keeps every vertex", n: 9, target: 100, wantStride: 1, wantTriangles: 3},
		{name: "target equals count", n: 9, target: 9, wantStride: 1, wantTriangles: 3},
		{name: "stride two", n: 12, target: 6, wantStride: 2, wantTriangles: 2},
		{name: "trailing vertices dropped", n: 11, target: 11, wantStride: 1, wantTriangles: 3},
		{name: "integer division stride", n: 100, target: 30, wantStride: 3, wantTriangles: 11},
		{name: "fewer than three vertices", n: 2, target: 5, wantStride: 1, wantTriangles: 0},
		{name: "empty input", n: 0, target: 5, wantStride: 1, wantTriangles: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, stats, err := Simplify(line(tt.n), tt.target)
			if err != nil {
				t.Fatalf("Simplify() error: %v", err)
			}
			if stats.Stride != tt.wantStride {
				t.Errorf("stride = %d, want %d", stats.Stride, tt.wantStride)
			}
			if len(tris) != tt.wantTriangles || stats.Triangles != tt.wantTriangles {
				t.Errorf("triangles = %d (stats %d), want %d", len(tris), stats.Triangles, tt.wantTriangles)
			}
			if stats.Degenerate != 0 {
				t.Errorf("unexpected degenerate triangles: %d", stats.Degenerate)
			}
		})
	}
}

func TestSimplify_SamplesInOrder(t *testing.T) {
	vs := line(12)
	tris, _, err := Simplify(vs, 6)
	if err != nil {
		t.Fatalf("Simplify() error: %v", err)
	}

	want := [][3]int{{0, 2, 4}, {6, 8, 10}}
	for i, idx := range want {
		for j := range 3 {
			if tris[i].Vertices[j] != vs[idx[j]] {
				t.Errorf("triangle %d vertex %d = %v, want input vertex %d", i, j, tris[i].Vertices[j], idx[j])
			}
		}
	}
}

func TestSimplify_InvalidTarget(t *testing.T) {
	for _, target := range []int{0, -1} {
		if _, _, err := Simplify(line(9), target); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("Simplify(target=%d) error = %v, want ErrInvalidTarget", target, err)
		}
	}
}

func TestSimplify_DegenerateTriangle(t *testing.T) {
	p := r3.Vector{X: 1, Y: 2, Z: 3}
	vs := []r3.Vector{p, p, p, {}, {X: 1}, {Y: 1}}

	tris, stats, err := Simplify(vs, 10)
	if err != nil {
		t.Fatalf("Simplify() error: %v", err)
	}
	if stats.Degenerate != 1 {
		t.Errorf("degenerate = %d, want 1", stats.Degenerate)
	}
	if tris[0].Normal != (r3.Vector{Z: 1}) {
		t.Errorf("degenerate normal = %v, want +Z", tris[0].Normal)
	}
	for _, tri := range tris {
		n := tri.Normal
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			t.Errorf("normal is NaN: %v", n)
		}
	}
}

func TestSimplify_NonFiniteVertex(t *testing.T) {
	vs := []r3.Vector{{X: math.Inf(1)}, {X: 1}, {Y: 1}, {}, {X: 1}, {Y: 1}}

	tris, stats, err := Simplify(vs, 10)
	if err != nil {
		t.Fatalf("Simplify() error: %v", err)
	}
	if stats.Degenerate != 1 {
		t.Errorf("degenerate = %d, want 1", stats.Degenerate)
	}
	for i, tri := range tris {
		n := tri.Normal
		for _, c := range []float64{n.X, n.Y, n.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				t.Fatalf("triangle %d normal is not finite: %v", i, n)
			}
		}
	}
	if tris[0].Normal != (r3.Vector{Z: 1}) {
		t.Errorf("normal = %v, want +Z", tris[0].Normal)
	}
}

func TestNormal(t *testing.T) {
	tests := []struct {
		name       string
		v1, v2, v3 r3.Vector
		want       r3.Vector
		wantOK     bool
	}{
		{name: "xy plane counter-clockwise", v1: r3.Vector{}, v2: r3.Vector{X: 1}, v3: r3.Vector{Y: 1}, want: r3.Vector{Z: 1}, wantOK: true},
		{name: "xy plane clockwise", v1: r3.Vector{}, v2: r3.Vector{Y: 1}, v3: r3.Vector{X: 1}, want: r3.Vector{Z: -1}, wantOK: true},
		{name: "large triangle is unit length", v1: r3.Vector{}, v2: r3.Vector{Y: 50}, v3: r3.Vector{Z: 50}, want: r3.Vector{X: 1}, wantOK: true},
		{name: "collinear", v1: r3.Vector{}, v2: r3.Vector{X: 1}, v3: r3.Vector{X: 2}, want: r3.Vector{Z: 1}, wantOK: false},
		{name: "nan vertex", v1: r3.Vector{X: math.NaN()}, v2: r3.Vector{X: 1}, v3: r3.Vector{Y: 1}, want: r3.Vector{Z: 1}, wantOK: false},
		{name: "cross product overflows", v1: r3.Vector{}, v2: r3.Vector{X: 1e200}, v3: r3.Vector{Y: 1e200}, want: r3.Vector{Z: 1}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normal(tt.v1, tt.v2, tt.v3)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Sub(tt.want).Norm() > 1e-6 {
				t.Errorf("Normal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMesh(t *testing.T) {
	src := &stl.Mesh{Name: "head"}
	vs := line(30)
	for i := 0; i+2 < len(vs); i += 3 {
		src.Triangles = append(src.Triangles, stl.Triangle{Vertices: [3]r3.Vector{vs[i], vs[i+1], vs[i+2]}})
	}

	out, stats, err := Mesh(src, 15)
	if err != nil {
		t.Fatalf("Mesh() error: %v", err)
	}
	if out.Name != "simplified" {
		t.Errorf("Name = %q, want simplified", out.Name)
	}
	if stats.InputVertices != 30 || stats.Stride != 2 || len(out.Triangles) != 5 {
		t.Errorf("unexpected stats %+v with %d triangles", stats, len(out.Triangles))
	}
}
