// Package editor holds the editor-side state for a single image and the
// ExportDataV1/ExportDataV2 records the editor persists or transmits.
//
// The records are passive: nothing here touches pixels. They carry the
// source size, the crop rectangle, the selected bucket preset, and (from V2
// on) the resize quality and sharpen parameters the engines will be invoked
// with.
package editor

import (
	"fmt"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
)

// NoBucket marks an Image that has no bucket preset selected.
const NoBucket = -1

// Sharpness holds the unsharp-mask parameters.
type Sharpness struct {
	Radius   float64 `json:"radius" validate:"gte=0"`
	Strength float64 `json:"strength" validate:"gte=0"`
}

// Image is the editor record for one source image.
type Image struct {
	Src           string          `json:"src"`
	Title         string          `json:"title"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	Crop          geometry.Rect   `json:"crop"`
	Bucket        int             `json:"bucket"`
	ResizeQuality imaging.Quality `json:"resizeQuality"`
	Sharpness     Sharpness       `json:"sharpness"`
}

// Defaults seeds new Image records.
type Defaults struct {
	CropRatio     float64
	ResizeQuality imaging.Quality
	Sharpness     Sharpness
}

// NewImage creates the record for a freshly opened image: a centered default
// crop, no bucket, and the configured quality and sharpness.
func NewImage(src, title string, size geometry.Size, d Defaults) (*Image, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("image %q has invalid size %s", src, size)
	}
	quality := d.ResizeQuality
	if quality == "" {
		quality = imaging.QualityLow
	}
	return &Image{
		Src:           src,
		Title:         title,
		Width:         size.Width,
		Height:        size.Height,
		Crop:          geometry.CalculateDefaultCrop(size, d.CropRatio),
		Bucket:        NoBucket,
		ResizeQuality: quality,
		Sharpness:     d.Sharpness,
	}, nil
}

// Size returns the natural size of the source image.
func (img *Image) Size() geometry.Size {
	return geometry.Size{Width: img.Width, Height: img.Height}
}

// SelectBucket picks preset i (or NoBucket) and tightens the crop to the
// bucket's aspect ratio.
func (img *Image) SelectBucket(presets Presets, i int) error {
	if i == NoBucket {
		img.Bucket = NoBucket
		return nil
	}
	b, ok := presets.At(i)
	if !ok {
		return fmt.Errorf("bucket index %d out of range [0,%d)", i, len(presets))
	}
	img.Bucket = i
	img.Crop = geometry.ReconcileCrop(img.Crop, b.Size)
	return nil
}

// Target returns the output size of the selected bucket.
func (img *Image) Target(presets Presets) (geometry.Size, bool) {
	b, ok := presets.At(img.Bucket)
	if !ok {
		return geometry.Size{}, false
	}
	return b.Size, true
}

// Presets is the ordered list of bucket choices offered by the editor.
type Presets []geometry.Bucket

// NewPresets builds buckets for sizes, rejecting non-positive dimensions and
// repeated sizes. Exports identify a bucket by size, so each size must map
// back to a single index.
func NewPresets(sizes ...geometry.Size) (Presets, error) {
	presets := make(Presets, 0, len(sizes))
	seen := make(map[geometry.Size]int, len(sizes))
	for i, s := range sizes {
		if !s.Valid() {
			return nil, fmt.Errorf("invalid bucket size %s", s)
		}
		if j, ok := seen[s]; ok {
			return nil, fmt.Errorf("duplicate bucket size %s at positions %d and %d", s, j, i)
		}
		seen[s] = i
		presets = append(presets, geometry.NewBucket(s))
	}
	return presets, nil
}

// At returns the bucket at index i.
func (p Presets) At(i int) (geometry.Bucket, bool) {
	if i < 0 || i >= len(p) {
		return geometry.Bucket{}, false
	}
	return p[i], true
}

// Index finds the preset with the same output size as b, or NoBucket.
func (p Presets) Index(b geometry.Bucket) int {
	for i, candidate := range p {
		if candidate.Size == b.Size {
			return i
		}
	}
	return NoBucket
}
