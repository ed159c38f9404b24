// Package overlay draws the measured landmarks and measurement segments on
// top of the source photo.
package overlay

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// ErrInvalidDetection is returned when a detection has no usable image size.
var ErrInvalidDetection = errors.New("detection has no image size")

// Options controls rendering. Zero values select the defaults.
type Options struct {
	MaxSize   int // longest output side in pixels, 0 keeps the source size
	DotRadius float64
	LineWidth float64
	DotColor  color.Color
	LineColor color.Color
}

// DefaultOptions returns the standard overlay style.
func DefaultOptions() Options {
	return Options{
		DotRadius: 1.5,
		LineWidth: 2,
		DotColor:  color.RGBA{R: 0, G: 200, B: 0, A: 255},
		LineColor: color.RGBA{R: 230, G: 40, B: 40, A: 255},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DotRadius <= 0 {
		o.DotRadius = d.DotRadius
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	if o.DotColor == nil {
		o.DotColor = d.DotColor
	}
	if o.LineColor == nil {
		o.LineColor = d.LineColor
	}
	return o
}

// Segments are the landmark pairs drawn as measurement lines.
var Segments = [][2]int{
	{measurement.LandmarkRightCheek, measurement.LandmarkLeftCheek},
	{measurement.LandmarkMenton, measurement.LandmarkSellion},
	{measurement.LandmarkMenton, measurement.LandmarkForeheadTop},
}

// Render copies src, scaled down to opts.MaxSize if needed, and draws every
// landmark of the first face as a dot plus the measurement segments. With no
// faces the scaled copy is returned unchanged.
func Render(src image.Image, det measurement.Detection, opts Options) (*image.RGBA, error) {
	opts = opts.withDefaults()

	dst := scaled(src, opts.MaxSize)
	if len(det.Faces) == 0 {
		return dst, nil
	}
	if det.Width <= 0 || det.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDetection, det.Width, det.Height)
	}

	b := dst.Bounds()
	sx := float64(b.Dx()) / float64(det.Width)
	sy := float64(b.Dy()) / float64(det.Height)
	points := det.Faces[0].Pixels(det.Width, det.Height)
	for i := range points {
		points[i].X *= sx
		points[i].Y *= sy
	}

	lines := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, seg := range Segments {
		if seg[0] >= len(points) || seg[1] >= len(points) {
			continue
		}
		addSegment(lines, points[seg[0]], points[seg[1]], opts.LineWidth)
	}
	lines.Draw(dst, b, image.NewUniform(opts.LineColor), image.Point{})

	dots := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, p := range points {
		addDot(dots, p, opts.DotRadius)
	}
	dots.Draw(dst, b, image.NewUniform(opts.DotColor), image.Point{})

	return dst, nil
}

func scaled(src image.Image, maxSize int) *image.RGBA {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	return dst
}

// addSegment adds a rectangle of the given width centred on a-b.
func addSegment(z *vector.Rasterizer, a, b measurement.Point, width float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
}

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

func addDot(z *vector.Rasterizer, c measurement.Point, r float64) {
	k := r * kappa
	x, y := c.X, c.Y
	f := func(v float64) float32 { return float32(v) }

	z.MoveTo(f(x+r), f(y))
	z.CubeTo(f(x+r), f(y+k), f(x+k), f(y+r), f(x), f(y+r))
	z.CubeTo(f(x-k), f(y+r), f(x-r), f(y+k), f(x-r), f(y))
	z.CubeTo(f(x-r), f(y-k), f(x-k), f(y-r), f(x), f(y-r))
	z.CubeTo(f(x+k), f(y-r), f(x+r), f(y-k), f(x+r), f(y))
	z.ClosePath()
}

// Decode reads a PNG, JPEG, GIF or BMP image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodePNG renders img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
