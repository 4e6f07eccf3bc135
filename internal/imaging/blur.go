package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurFilter produces the low-pass copy used by the sharpen engine.
// A radius <= 0 must return an image equal to the input.
type BlurFilter interface {
	Blur(img image.Image, radius float64) image.Image
}

// BildBlur is a separable Gaussian blur from bild. Its radius behaves like the
// pixel argument of a CSS blur() filter.
type BildBlur struct{}

// Blur implements BlurFilter.
func (BildBlur) Blur(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

// ImagingBlur uses imaging.Blur, treating radius as the Gaussian sigma.
type ImagingBlur struct{}

// Blur implements BlurFilter.
func (ImagingBlur) Blur(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return imaging.Blur(img, radius)
}

// BlurFilterByName resolves a configured filter name: "gaussian" (or "bild")
// and "imaging". Empty selects gaussian.
func BlurFilterByName(name string) (BlurFilter, error) {
	switch strings.ToLower(name) {
	case "", "gaussian", "bild":
		return BildBlur{}, nil
	case "imaging":
		return ImagingBlur{}, nil
	}
	return nil, fmt.Errorf("unknown blur filter %q", name)
}
