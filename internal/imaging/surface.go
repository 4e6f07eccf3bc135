package imaging

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// Quality is the interpolation tier used when scaling a crop to its target.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality accepts "low", "medium" or "high" in any case. An empty string
// yields fallback.
func ParseQuality(s string, fallback Quality) (Quality, error) {
	if s == "" {
		return fallback, nil
	}
	q := Quality(strings.ToLower(s))
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return q, nil
	}
	return "", fmt.Errorf("unknown resize quality %q (want low, medium or high)", s)
}

// Interpolator maps the quality tier to an x/image scaler. Smoothing is never
// disabled, so even QualityLow interpolates.
func (q Quality) Interpolator() draw.Interpolator {
	switch q {
	case QualityLow:
		return draw.ApproxBiLinear
	case QualityMedium:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// MaxSurfacePixels bounds a single drawing surface (16384 x 16384).
const MaxSurfacePixels = 16384 * 16384

// Surface is an exact-size drawing buffer.
type Surface interface {
	// Size returns the surface dimensions.
	Size() geometry.Size
	// DrawRegion scales the sr region of src into the dr region of the
	// surface. Pixels outside dr are left untouched.
	DrawRegion(src image.Image, sr, dr geometry.Rect, q Quality)
	// Image returns the backing pixels.
	Image() *image.NRGBA
}

// SurfaceFactory allocates a Surface of the given size.
type SurfaceFactory func(size geometry.Size) (Surface, error)

type nrgbaSurface struct {
	dst *image.NRGBA
}

// NewSurface allocates a transparent NRGBA surface. It fails with
// *ContextAcquisitionError for non-positive or oversized dimensions.
func NewSurface(size geometry.Size) (Surface, error) {
	if !size.Valid() {
		return nil, &ContextAcquisitionError{Size: size, Reason: "dimensions must be positive"}
	}
	if int64(size.Width)*int64(size.Height) > MaxSurfacePixels {
		return nil, &ContextAcquisitionError{Size: size, Reason: "exceeds maximum surface area"}
	}
	return &nrgbaSurface{dst: image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))}, nil
}

func (s *nrgbaSurface) Size() geometry.Size {
	return geometry.Size{Width: s.dst.Rect.Dx(), Height: s.dst.Rect.Dy()}
}

func (s *nrgbaSurface) DrawRegion(src image.Image, sr, dr geometry.Rect, q Quality) {
	o := src.Bounds().Min
	r := image.Rect(o.X+sr.X, o.Y+sr.Y, o.X+sr.X+sr.Width, o.Y+sr.Y+sr.Height)
	d := image.Rect(dr.X, dr.Y, dr.X+dr.Width, dr.Y+dr.Height).Intersect(s.dst.Rect)
	if d.Empty() {
		return
	}
	q.Interpolator().Scale(s.dst, d, src, r, draw.Src, nil)
}

func (s *nrgbaSurface) Image() *image.NRGBA {
	return s.dst
}
