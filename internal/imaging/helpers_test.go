package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createInMemoryImage creates a uniformly colored test image
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant:
// red top-left, green top-right, blue bottom-left, white bottom-right
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255}
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255}
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255}
			} else {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createStripeImage creates vertical black/white stripes of the given width,
// which gives blur and sharpen something to work on
func createStripeImage(width, height, stripe int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(40)
			if (x/stripe)%2 == 1 {
				v = 215
			}
			img.Set(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writeTestImage writes img as PNG under t.TempDir() and returns the path
func writeTestImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, img), 0o644))
	return path
}

func decodeBytesT(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := decodeBytes(data)
	require.NoError(t, err)
	return img
}
