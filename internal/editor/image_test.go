package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage("a.png", "A", geometry.Size{Width: 101, Height: 57}, Defaults{
		ResizeQuality: imaging.QualityHigh,
		Sharpness:     Sharpness{Radius: 1, Strength: 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, geometry.Rect{X: 10, Y: 6, Width: 80, Height: 45}, img.Crop)
	assert.Equal(t, NoBucket, img.Bucket)
	assert.Equal(t, imaging.QualityHigh, img.ResizeQuality)
	assert.Equal(t, Sharpness{Radius: 1, Strength: 0.5}, img.Sharpness)
	assert.Equal(t, geometry.Size{Width: 101, Height: 57}, img.Size())

	img, err = NewImage("b.png", "", geometry.Size{Width: 10, Height: 10}, Defaults{CropRatio: 0.5})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 2, Y: 2, Width: 5, Height: 5}, img.Crop)
	assert.Equal(t, imaging.QualityLow, img.ResizeQuality)

	_, err = NewImage("c.png", "", geometry.Size{Width: 0, Height: 10}, Defaults{})
	assert.Error(t, err)
}

func TestImage_SelectBucket(t *testing.T) {
	presets := testPresets(t)
	img, err := NewImage("a.png", "", geometry.Size{Width: 1000, Height: 1000}, Defaults{})
	require.NoError(t, err)

	// 800x800 crop against 1200x675 (16:9) keeps the width.
	require.NoError(t, img.SelectBucket(presets, 0))
	assert.Equal(t, 0, img.Bucket)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 800, Height: 450}, img.Crop)

	target, ok := img.Target(presets)
	require.True(t, ok)
	assert.Equal(t, geometry.Size{Width: 1200, Height: 675}, target)

	require.NoError(t, img.SelectBucket(presets, NoBucket))
	_, ok = img.Target(presets)
	assert.False(t, ok)

	assert.Error(t, img.SelectBucket(presets, 3))
}

func TestPresets(t *testing.T) {
	presets := testPresets(t)
	assert.Len(t, presets, 3)
	assert.Equal(t, geometry.Size{Width: 3, Height: 2}, presets[1].Ratio)

	assert.Equal(t, 2, presets.Index(geometry.NewBucket(geometry.Size{Width: 400, Height: 250})))
	assert.Equal(t, NoBucket, presets.Index(geometry.NewBucket(geometry.Size{Width: 1, Height: 1})))

	_, ok := presets.At(-1)
	assert.False(t, ok)

	_, err := NewPresets(geometry.Size{Width: 10, Height: 0})
	assert.Error(t, err)
}

func TestNewPresets_RejectsDuplicateSizes(t *testing.T) {
	_, err := NewPresets(
		geometry.Size{Width: 100, Height: 100},
		geometry.Size{Width: 200, Height: 100},
		geometry.Size{Width: 100, Height: 100},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate bucket size 100x100")
}
