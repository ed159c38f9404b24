// Package reference measures the named reference headform meshes and
// persists the resulting table.
package reference

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/stl"
)

// File names a reference headform mesh for one category.
type File struct {
	Category string
	Name     string
}

// ExpectedFiles lists the reference meshes in processing order.
var ExpectedFiles = []File{
	{Category: "small", Name: "small_symmetry.stl"},
	{Category: "medium", Name: "medium_symmetry.stl"},
	{Category: "large", Name: "large_symmetry.stl"},
	{Category: "long_narrow", Name: "long_narrow_symmetry.stl"},
	{Category: "short_wide", Name: "short_wide_symmetry.stl"},
}

// Record is the stored measurement summary of one reference headform.
// Millimetre values are rounded to one decimal place.
type Record struct {
	BizygomaticBreadth float64 `json:"bizygomatic_breadth"`
	MentonSellion      float64 `json:"menton_sellion"`
	FaceWidth          float64 `json:"face_width"`
	FaceLength         float64 `json:"face_length"`
	FaceDepth          float64 `json:"face_depth"`
	VertexCount        int     `json:"vertex_count"`
}

// NewRecord rounds headform measurements into a Record.
func NewRecord(h measurement.HeadformMeasurements) Record {
	r := h.Rounded()
	return Record{
		BizygomaticBreadth: r.BizygomaticBreadth,
		MentonSellion:      r.MentonSellion,
		FaceWidth:          r.FaceWidth,
		FaceLength:         r.FaceLength,
		FaceDepth:          r.FaceDepth,
		VertexCount:        r.VertexCount,
	}
}

// Table maps category to its reference record.
type Table map[string]Record

// Categories returns the table's categories, expected ones first in
// ExpectedFiles order, then any others sorted by name.
func (t Table) Categories() []string {
	out := make([]string, 0, len(t))
	known := make(map[string]bool, len(ExpectedFiles))
	for _, f := range ExpectedFiles {
		known[f.Category] = true
		if _, ok := t[f.Category]; ok {
			out = append(out, f.Category)
		}
	}
	var extra []string
	for c := range t {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Headforms converts the table to storage records in Categories order.
func (t Table) Headforms() []database.StoredHeadform {
	out := make([]database.StoredHeadform, 0, len(t))
	for _, c := range t.Categories() {
		r := t[c]
		out = append(out, database.StoredHeadform{
			Category:           c,
			BizygomaticBreadth: r.BizygomaticBreadth,
			MentonSellion:      r.MentonSellion,
			FaceWidth:          r.FaceWidth,
			FaceLength:         r.FaceLength,
			FaceDepth:          r.FaceDepth,
			VertexCount:        r.VertexCount,
			SourceFile:         fileName(c),
		})
	}
	return out
}

func fileName(category string) string {
	for _, f := range ExpectedFiles {
		if f.Category == category {
			return f.Name
		}
	}
	return ""
}

// Result reports the outcome for one expected file.
type Result struct {
	File  File
	Path  string
	Found bool
	// Measurements is unrounded; Found is false when the file was missing.
	Measurements measurement.HeadformMeasurements
}

// Process measures every expected file present in dir. Missing files are
// skipped with a warning. A file that exists but cannot be parsed or
// measured aborts the run. onProgress, when non-nil, is called after each
// expected file.
func Process(ctx context.Context, dir string, extractor *measurement.MeshExtractor, onProgress func(Result)) (Table, error) {
	table := make(Table, len(ExpectedFiles))

	for _, f := range ExpectedFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := Result{File: f, Path: filepath.Join(dir, f.Name)}
		if _, err := os.Stat(res.Path); errors.Is(err, fs.ErrNotExist) {
			log.Warn(log.Fields{"file": f.Name, "dir": dir}, "reference headform not found")
			if onProgress != nil {
				onProgress(res)
			}
			continue
		} else if err != nil {
			return nil, fmt.Errorf("checking %s: %w", res.Path, err)
		}

		mesh, err := stl.ReadFile(res.Path)
		if err != nil {
			return nil, err
		}
		h, err := extractor.Extract(mesh.Vertices())
		if err != nil {
			return nil, fmt.Errorf("measuring %s: %w", f.Name, err)
		}

		res.Found = true
		res.Measurements = h
		table[f.Category] = NewRecord(h)

		log.Info(log.Fields{
			"category":            f.Category,
			"bizygomatic_breadth": table[f.Category].BizygomaticBreadth,
			"menton_sellion":      table[f.Category].MentonSellion,
			"vertices":            h.VertexCount,
		}, "processed reference headform")
		if onProgress != nil {
			onProgress(res)
		}
	}
	return table, nil
}
