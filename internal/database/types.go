package database

import (
	"time"

	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// StoredHeadform is a reference headform's measurements keyed by category.
type StoredHeadform struct {
	Category           string
	BizygomaticBreadth float64
	MentonSellion      float64
	FaceWidth          float64
	FaceLength         float64
	FaceDepth          float64
	VertexCount        int
	SourceFile         string // STL file the measurements were taken from
	UpdatedAt          time.Time
}

// Shape is the point the headform occupies in the classification plane.
func (h StoredHeadform) Shape() []float32 {
	return shapeVector(h.BizygomaticBreadth, h.MentonSellion)
}

func shapeVector(bizygomatic, mentonSellion float64) []float32 {
	return []float32{float32(bizygomatic), float32(mentonSellion)}
}

// FitRecord is a persisted fitting session.
type FitRecord struct {
	ID                string
	SubjectName       string
	DateOfBirth       string // YYYY-MM-DD, empty when not given
	Measurements      measurement.MeasurementSet
	Category          string
	Confidence        int
	Matched           bool
	Recommendations   []string // candidate IDs in ranked order
	InventoryFallback bool
	NearestReference  string
	CreatedAt         time.Time
}
