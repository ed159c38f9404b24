// Package stl reads and writes ASCII STL meshes.
//
// The grammar is the plain ASCII form used by headform exporters:
//
//	solid <name>
//	  facet normal nx ny nz
//	    outer loop
//	      vertex x y z
//	      vertex x y z
//	      vertex x y z
//	    endloop
//	  endfacet
//	endsolid <name>
package stl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// ErrBinarySTL is returned when the input does not start with "solid".
var ErrBinarySTL = errors.New("not an ASCII STL (missing solid header)")

// ParseError reports a grammar violation with its line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stl: line %d: %s", e.Line, e.Msg)
}

// Triangle is one facet: its normal and three vertices in winding order.
type Triangle struct {
	Normal   r3.Vector
	Vertices [3]r3.Vector
}

// Mesh is a named triangle list.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// Vertices flattens the mesh into consecutive vertex triples.
func (m *Mesh) Vertices() []r3.Vector {
	out := make([]r3.Vector, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		out = append(out, t.Vertices[0], t.Vertices[1], t.Vertices[2])
	}
	return out
}

// parser walks non-blank lines keeping the line number for errors.
type parser struct {
	sc   *bufio.Scanner
	line int
}

func (p *parser) next() ([]string, bool) {
	for p.sc.Scan() {
		p.line++
		fields := strings.Fields(p.sc.Text())
		if len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(keywords ...string) ([]string, error) {
	fields, ok := p.next()
	if !ok {
		return nil, p.errorf("unexpected end of input, want %q", strings.Join(keywords, " "))
	}
	if len(fields) < len(keywords) {
		return nil, p.errorf("want %q, got %q", strings.Join(keywords, " "), strings.Join(fields, " "))
	}
	for i, kw := range keywords {
		if fields[i] != kw {
			return nil, p.errorf("want %q, got %q", strings.Join(keywords, " "), strings.Join(fields, " "))
		}
	}
	return fields[len(keywords):], nil
}

func (p *parser) vector(fields []string) (r3.Vector, error) {
	if len(fields) != 3 {
		return r3.Vector{}, p.errorf("want 3 coordinates, got %d", len(fields))
	}
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, p.errorf("bad number %q", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r3.Vector{}, p.errorf("non-finite number %q", f)
		}
		xyz[i] = v
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// Parse reads an ASCII STL mesh.
func Parse(r io.Reader) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	p := &parser{sc: sc}

	header, ok := p.next()
	if !ok || header[0] != "solid" {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading stl: %w", err)
		}
		return nil, ErrBinarySTL
	}
	mesh := &Mesh{Name: strings.Join(header[1:], " ")}

	for {
		fields, ok := p.next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("reading stl: %w", err)
			}
			return nil, p.errorf("missing endsolid")
		}
		switch fields[0] {
		case "endsolid":
			return mesh, nil
		case "facet":
			if len(fields) < 2 || fields[1] != "normal" {
				return nil, p.errorf("want \"facet normal\", got %q", strings.Join(fields, " "))
			}
			tri, err := p.facet(fields[2:])
			if err != nil {
				return nil, err
			}
			mesh.Triangles = append(mesh.Triangles, tri)
		default:
			return nil, p.errorf("unexpected %q", fields[0])
		}
	}
}

func (p *parser) facet(normalFields []string) (Triangle, error) {
	var tri Triangle
	n, err := p.vector(normalFields)
	if err != nil {
		return tri, err
	}
	tri.Normal = n

	if _, err := p.expect("outer", "loop"); err != nil {
		return tri, err
	}
	for i := range tri.Vertices {
		rest, err := p.expect("vertex")
		if err != nil {
			return tri, err
		}
		if tri.Vertices[i], err = p.vector(rest); err != nil {
			return tri, err
		}
	}
	if _, err := p.expect("endloop"); err != nil {
		return tri, err
	}
	if _, err := p.expect("endfacet"); err != nil {
		return tri, err
	}
	return tri, nil
}

// Write serializes the mesh in ASCII STL with %.6e coordinates.
func Write(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", m.Name)
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "  facet normal %.6e %.6e %.6e\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		bw.WriteString("    outer loop\n")
		for _, v := range t.Vertices {
			fmt.Fprintf(bw, "      vertex %.6e %.6e %.6e\n", v.X, v.Y, v.Z)
		}
		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", m.Name)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing stl: %w", err)
	}
	return nil
}

// ReadFile parses the ASCII STL file at path.
func ReadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes the mesh to path, replacing any existing file.
func WriteFile(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
