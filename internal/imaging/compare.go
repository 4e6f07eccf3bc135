package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// CompareResult describes how two images differ pixel by pixel.
type CompareResult struct {
	// SameSize is false when the images differ in dimensions; only the
	// overlapping top-left area is compared in that case.
	SameSize bool `json:"same_size"`

	// Identical is true when every compared pixel matches exactly in all four
	// 8-bit channels.
	Identical bool `json:"identical"`

	PixelsDifferent int `json:"pixels_different"`
	TotalPixels     int `json:"total_pixels"`

	// MaxChannelDiff is the largest absolute 8-bit difference seen in any
	// channel, alpha included.
	MaxChannelDiff int `json:"max_channel_diff"`

	// MeanDistance is the average CIE L*a*b* distance between pixels.
	// Differences below ~0.01 are imperceptible.
	MeanDistance float64 `json:"mean_distance"`

	// Similarity is the fraction of compared pixels that match exactly.
	Similarity float64 `json:"similarity"`
}

// Compare measures the difference between a and b.
func Compare(a, b image.Image) (*CompareResult, error) {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("cannot compare empty images (%dx%d vs %dx%d)", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	result := &CompareResult{
		SameSize:    ab.Dx() == bb.Dx() && ab.Dy() == bb.Dy(),
		TotalPixels: w * h,
	}

	var totalDistance float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)
			if ca == cb {
				continue
			}

			result.PixelsDifferent++
			for _, d := range []int{
				absDiff(ca.R, cb.R), absDiff(ca.G, cb.G), absDiff(ca.B, cb.B), absDiff(ca.A, cb.A),
			} {
				result.MaxChannelDiff = max(result.MaxChannelDiff, d)
			}
			totalDistance += labColor(ca).DistanceLab(labColor(cb))
		}
	}

	result.Identical = result.PixelsDifferent == 0
	result.MeanDistance = math.Round(totalDistance/float64(result.TotalPixels)*10000) / 10000
	result.Similarity = math.Round((1-float64(result.PixelsDifferent)/float64(result.TotalPixels))*1000) / 1000
	return result, nil
}

// labColor converts to a colorful.Color. Alpha is dropped here; it only
// shows up in PixelsDifferent and MaxChannelDiff.
func labColor(c color.NRGBA) colorful.Color {
	col, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return col
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
