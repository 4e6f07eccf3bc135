package imaging

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	require.NotNil(t, cache)
	require.NotNil(t, cache.images)
	assert.Equal(t, 0, cache.Len())
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, "red.png", createInMemoryImage(100, 100, color.NRGBA{255, 0, 0, 255}))

	img1, err := cache.Load(imgPath)
	require.NoError(t, err)
	assert.Equal(t, 100, img1.Bounds().Dx())
	assert.Equal(t, 100, img1.Bounds().Dy())

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	require.NoError(t, err)
	assert.True(t, img1 == img2, "second Load did not return cached image")
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	require.Error(t, err)

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := cache.Load(path)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, 0, cache.Len(), "failed loads must not be cached")
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	a := writeTestImage(t, "a.png", createInMemoryImage(10, 10, color.White))
	b := writeTestImage(t, "b.png", createInMemoryImage(10, 10, color.Black))

	_, err := cache.Load(a)
	require.NoError(t, err)
	_, err = cache.Load(b)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Evict(a)
	cache.Evict("/nonexistent/path")
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, "gray.png", createInMemoryImage(50, 50, color.NRGBA{128, 128, 128, 255}))

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestDefaultDecoder_Sources(t *testing.T) {
	img := createPatternImage(40, 20)
	data := encodePNG(t, img)
	path := writeTestImage(t, "pattern.png", img)

	tests := []struct {
		name string
		src  Source
	}{
		{"path", SourceFromString(path)},
		{"data url", SourceFromString(ReadAsDataURL(data))},
		{"blob", SourceFromBytes(data)},
	}

	dec := NewDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dec.Decode(context.Background(), tt.src)
			require.NoError(t, err)

			cmp, err := Compare(img, got)
			require.NoError(t, err)
			assert.True(t, cmp.Identical)
		})
	}
}

func TestDefaultDecoder_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  Source
	}{
		{"remote url", SourceFromString("https://example.com/cat.png")},
		{"empty path", SourceFromString("")},
		{"empty blob", SourceFromBytes(nil)},
		{"garbage blob", SourceFromBytes([]byte("definitely not pixels"))},
		{"bad base64", SourceFromString("data:image/png;base64,!!!")},
	}

	dec := NewDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.Decode(context.Background(), tt.src)
			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDefaultDecoder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder(nil).Decode(ctx, SourceFromBytes(encodePNG(t, createInMemoryImage(2, 2, color.White))))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, "info.png", createInMemoryImage(200, 150, color.NRGBA{255, 128, 64, 255}))

	info, err := LoadImageInfo(cache, imgPath, 0.8)
	require.NoError(t, err)

	assert.Equal(t, 200, info.Width)
	assert.Equal(t, 150, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSizeBytes)
	assert.Equal(t, geometry.Size{Width: 4, Height: 3}, info.AspectRatio)
	assert.Equal(t, geometry.Rect{X: 20, Y: 15, Width: 160, Height: 120}, info.DefaultCrop)
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".JPEG", "jpeg"},
		{".gif", "gif"},
		{".webp", "webp"},
		{".xyz", "unknown"},
	}

	img := createInMemoryImage(10, 10, color.White)
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// Content is always PNG; detection only looks at the extension.
			path := writeTestImage(t, "img"+tt.ext, img)
			info, err := LoadImageInfo(NewImageCache(), path, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.format, info.Format)
		})
	}
}
