package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

func TestNewSurface(t *testing.T) {
	s, err := NewSurface(geometry.Size{Width: 30, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{Width: 30, Height: 20}, s.Size())
	assert.Equal(t, image.Rect(0, 0, 30, 20), s.Image().Bounds())

	for _, bad := range []geometry.Size{{Width: 0, Height: 1}, {Width: 5, Height: -1}, {Width: 20000, Height: 20000}} {
		_, err := NewSurface(bad)
		assert.ErrorIs(t, err, ErrContextAcquisition, bad.String())
	}
}

func TestSurface_DrawRegion(t *testing.T) {
	src := createPatternImage(40, 40)
	s, err := NewSurface(geometry.Size{Width: 8, Height: 8})
	require.NoError(t, err)

	// Blue quadrant
	s.DrawRegion(src, geometry.Rect{X: 0, Y: 20, Width: 20, Height: 20}, geometry.Rect{Width: 8, Height: 8}, QualityHigh)

	cmp, err := Compare(createInMemoryImage(8, 8, color.NRGBA{0, 0, 255, 255}), s.Image())
	require.NoError(t, err)
	assert.True(t, cmp.Identical)
}

func TestSurface_DrawRegionPartial(t *testing.T) {
	src := createInMemoryImage(10, 10, color.NRGBA{255, 0, 0, 255})
	s, err := NewSurface(geometry.Size{Width: 8, Height: 8})
	require.NoError(t, err)

	s.DrawRegion(src, geometry.Rect{Width: 10, Height: 10}, geometry.Rect{X: 4, Width: 8, Height: 8}, QualityLow)

	img := s.Image()
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(3, 4))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(4, 4))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(7, 7))
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input   string
		want    Quality
		wantErr bool
	}{
		{"", QualityMedium, false},
		{"low", QualityLow, false},
		{"Medium", QualityMedium, false},
		{"HIGH", QualityHigh, false},
		{"ultra", "", true},
	}

	for _, tt := range tests {
		got, err := ParseQuality(tt.input, QualityMedium)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestQuality_Interpolator(t *testing.T) {
	assert.Equal(t, draw.ApproxBiLinear, QualityLow.Interpolator())
	assert.Equal(t, draw.BiLinear, QualityMedium.Interpolator())
	assert.Equal(t, draw.CatmullRom, QualityHigh.Interpolator())
}
