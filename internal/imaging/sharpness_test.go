package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureSharpness(t *testing.T) {
	assert.Zero(t, MeasureSharpness(createInMemoryImage(20, 20, color.NRGBA{90, 90, 90, 255})))
	assert.Zero(t, MeasureSharpness(image.NewNRGBA(image.Rect(0, 0, 0, 0))))

	fine := MeasureSharpness(createStripeImage(40, 10, 2))
	coarse := MeasureSharpness(createStripeImage(40, 10, 10))
	assert.Positive(t, coarse)
	assert.Greater(t, fine, coarse, "more edges per area scores higher")
}

func TestBlurFilters(t *testing.T) {
	img := createStripeImage(20, 10, 2)

	for _, f := range []BlurFilter{BildBlur{}, ImagingBlur{}} {
		same := f.Blur(img, 0)
		assert.Same(t, img, same.(*image.NRGBA), "%T radius 0", f)

		blurred := f.Blur(img, 2)
		assert.Equal(t, img.Bounds().Size(), blurred.Bounds().Size())
		assert.Less(t, MeasureSharpness(blurred), MeasureSharpness(img), "%T", f)
	}
}

func TestBlurFilterByName(t *testing.T) {
	tests := []struct {
		name    string
		want    BlurFilter
		wantErr bool
	}{
		{"", BildBlur{}, false},
		{"gaussian", BildBlur{}, false},
		{"Bild", BildBlur{}, false},
		{"imaging", ImagingBlur{}, false},
		{"box", nil, true},
	}

	for _, tt := range tests {
		got, err := BlurFilterByName(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}
}
