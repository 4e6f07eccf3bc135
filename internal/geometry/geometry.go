// Package geometry holds the pure size and rectangle math behind the crop
// editor: aspect ratio reduction, the default centered crop, and the
// reconciliation of a user crop against a target output size.
//
// All coordinates are integer source-image pixels with (0,0) at the top-left
// corner. Nothing in this package allocates images or performs I/O.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCropRatio is the fraction of each dimension covered by the crop
// offered for a freshly loaded image.
const DefaultCropRatio = 0.8

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ParseSize parses "WIDTHxHEIGHT" (case-insensitive x) into a valid Size.
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	size := Size{Width: width, Height: height}
	if !size.Valid() {
		return Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return size, nil
}

// Rect is a crop region in source-image pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size returns the width and height of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within reports whether r lies entirely inside an image of the given size.
func (r Rect) Within(bounds Size) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.X+r.Width <= bounds.Width && r.Y+r.Height <= bounds.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Bucket pairs a preset output size with its reduced aspect ratio.
type Bucket struct {
	Size  Size `json:"size"`
	Ratio Size `json:"ratio"`
}

// NewBucket builds the bucket for size.
func NewBucket(size Size) Bucket {
	return Bucket{Size: size, Ratio: CalculateAspectRatio(size.Width, size.Height)}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// CalculateAspectRatio reduces width:height to lowest terms.
//
// For positive inputs the result has the same ratio and coprime components,
// e.g. (1920, 1080) -> 16:9. When either input is zero the input is returned
// unchanged; callers that need a real ratio must reject zero sizes first.
func CalculateAspectRatio(width, height int) Size {
	if width == 0 || height == 0 {
		return Size{Width: width, Height: height}
	}
	d := gcd(width, height)
	if d < 0 {
		d = -d
	}
	return Size{Width: width / d, Height: height / d}
}

// CalculateDefaultCrop returns a rectangle covering ratio of each dimension,
// centered with floored margins. A ratio <= 0 selects DefaultCropRatio.
// Ratios above 1 produce a rectangle larger than size.
func CalculateDefaultCrop(size Size, ratio float64) Rect {
	if ratio <= 0 {
		ratio = DefaultCropRatio
	}
	w := int(math.Floor(float64(size.Width) * ratio))
	h := int(math.Floor(float64(size.Height) * ratio))
	return Rect{
		X:      floorDiv(size.Width-w, 2),
		Y:      floorDiv(size.Height-h, 2),
		Width:  w,
		Height: h,
	}
}

// floorDiv divides rounding toward negative infinity, which matters when the
// crop is larger than the source and the margin goes negative.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ceilDiv divides non-negative a by positive b rounding up.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// ReconcileCrop tightens crop so its aspect ratio matches target.
//
// Only the over-long axis shrinks; the origin never moves and neither
// dimension grows. The comparison and the new length are computed by
// cross-multiplication so the result is exact:
//
//	crop.W/crop.H > target.W/target.H  ->  W = ceil(target.W*crop.H/target.H)
//	otherwise                          ->  H = ceil(target.H*crop.W/target.W)
//
// Empty crops or invalid targets are returned unchanged.
func ReconcileCrop(crop Rect, target Size) Rect {
	if crop.Empty() || !target.Valid() {
		return crop
	}
	if crop.Width*target.Height > target.Width*crop.Height {
		crop.Width = ceilDiv(target.Width*crop.Height, target.Height)
	} else {
		crop.Height = ceilDiv(target.Height*crop.Width, target.Width)
	}
	return crop
}

// ClampRect intersects r with an image of the given bounds. The result may be
// empty when r lies entirely outside.
func ClampRect(r Rect, bounds Size) Rect {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1 := min(r.X+r.Width, bounds.Width)
	y1 := min(r.Y+r.Height, bounds.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
