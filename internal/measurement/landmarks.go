package measurement

import (
	"fmt"
	"math"
)

// Face-mesh landmark indices used for measurements.
const (
	LandmarkRightCheek  = 454
	LandmarkLeftCheek   = 234
	LandmarkMenton      = 152
	LandmarkSellion     = 6
	LandmarkForeheadTop = 10
)

// Empirical calibration: a 140 mm reference breadth spans 180 pixels.
const (
	ReferenceBreadthMM     = 140.0
	ReferenceBreadthPixels = 180.0

	DefaultMMPerPixel = ReferenceBreadthMM / ReferenceBreadthPixels
)

// Point is a 2D landmark position, either normalized to [0,1] or in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet is the ordered landmark list for one detected face.
type LandmarkSet struct {
	Points     []Point `json:"points"`
	Normalized bool    `json:"normalized"`
}

// Detection is what the external face detector reports for one image.
type Detection struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Faces  []LandmarkSet `json:"faces"`
}

// LandmarkExtractor converts landmark sets into millimetre measurements.
type LandmarkExtractor struct {
	MMPerPixel float64
}

// NewLandmarkExtractor returns an extractor with the given calibration.
// A zero calibration selects DefaultMMPerPixel.
func NewLandmarkExtractor(mmPerPixel float64) (*LandmarkExtractor, error) {
	if mmPerPixel == 0 {
		mmPerPixel = DefaultMMPerPixel
	}
	if !isFinite(mmPerPixel) || mmPerPixel <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCalibration, mmPerPixel)
	}
	return &LandmarkExtractor{MMPerPixel: mmPerPixel}, nil
}

// Extract measures the first face of a detection.
// The boolean is false when the detector found no face; that is not an error
// and the returned set is empty. Additional faces are ignored.
func (e *LandmarkExtractor) Extract(det Detection) (MeasurementSet, bool, error) {
	if len(det.Faces) == 0 {
		return MeasurementSet{}, false, nil
	}
	if det.Width <= 0 || det.Height <= 0 {
		return MeasurementSet{}, false, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, det.Width, det.Height)
	}
	if !isFinite(e.MMPerPixel) || e.MMPerPixel <= 0 {
		return MeasurementSet{}, false, fmt.Errorf("%w: %v", ErrInvalidCalibration, e.MMPerPixel)
	}

	face := det.Faces[0]
	distance := func(a, b int) (float64, error) {
		pa, err := face.pixel(a, det.Width, det.Height)
		if err != nil {
			return 0, err
		}
		pb, err := face.pixel(b, det.Width, det.Height)
		if err != nil {
			return 0, err
		}
		return math.Hypot(pb.X-pa.X, pb.Y-pa.Y) * e.MMPerPixel, nil
	}

	breadth, err := distance(LandmarkRightCheek, LandmarkLeftCheek)
	if err != nil {
		return MeasurementSet{}, false, err
	}
	mentonSellion, err := distance(LandmarkMenton, LandmarkSellion)
	if err != nil {
		return MeasurementSet{}, false, err
	}
	faceLength, err := distance(LandmarkMenton, LandmarkForeheadTop)
	if err != nil {
		return MeasurementSet{}, false, err
	}

	m := MeasurementSet{
		BizygomaticBreadth: breadth,
		MentonSellion:      mentonSellion,
		FaceWidth:          breadth,
		FaceLength:         faceLength,
	}
	if err := m.Validate(); err != nil {
		return MeasurementSet{}, false, fmt.Errorf("landmark distances: %w", err)
	}
	return m, true, nil
}

// pixel returns landmark idx in pixel coordinates.
func (s LandmarkSet) pixel(idx, width, height int) (Point, error) {
	if idx < 0 || idx >= len(s.Points) {
		return Point{}, fmt.Errorf("%w: index %d (set has %d points)", ErrMissingLandmark, idx, len(s.Points))
	}
	p := s.Points[idx]
	if !isFinite(p.X) || !isFinite(p.Y) {
		return Point{}, fmt.Errorf("%w: landmark %d is not finite", ErrInvalidMeasurement, idx)
	}
	if s.Normalized {
		return Point{X: p.X * float64(width), Y: p.Y * float64(height)}, nil
	}
	return p, nil
}

// Pixels returns every landmark in pixel coordinates.
func (s LandmarkSet) Pixels(width, height int) []Point {
	out := make([]Point, len(s.Points))
	for i, p := range s.Points {
		if s.Normalized {
			p = Point{X: p.X * float64(width), Y: p.Y * float64(height)}
		}
		out[i] = p
	}
	return out
}
