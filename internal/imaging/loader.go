package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Once an image is loaded, subsequent Load() calls for the same path return
// the cached copy without disk I/O. Cached images are shared between callers
// and must be treated as read-only; the engines always copy before writing.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). Long-running servers should evict images the editor has closed.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate entries.
//
// # Errors
//
//   - *DecodeError wrapping the os error if the file cannot be read
//   - *DecodeError if the content is not a PNG, JPEG, GIF, BMP, TIFF or WebP image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: fmt.Errorf("failed to open image: %w", err)}
	}

	img, err := decodeBytes(data)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// decodeBytes decodes with EXIF auto-orientation, falling back to the WebP
// decoder for files the registered decoders reject.
func decodeBytes(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return wimg, nil
	}
	return nil, fmt.Errorf("unknown or unsupported format: %w", err)
}

// Decoder turns a Source into pixels. Implementations should fail with
// *DecodeError; the engines wrap anything else.
type Decoder interface {
	Decode(ctx context.Context, src Source) (image.Image, error)
}

// DefaultDecoder decodes paths through an ImageCache and inline sources
// directly. Remote URLs are refused.
type DefaultDecoder struct {
	cache *ImageCache
}

// NewDecoder returns a DefaultDecoder backed by cache. A nil cache gets a
// private one.
func NewDecoder(cache *ImageCache) *DefaultDecoder {
	if cache == nil {
		cache = NewImageCache()
	}
	return &DefaultDecoder{cache: cache}
}

// Cache exposes the backing cache.
func (d *DefaultDecoder) Cache() *ImageCache { return d.cache }

// Decode implements Decoder.
func (d *DefaultDecoder) Decode(ctx context.Context, src Source) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch src.Kind() {
	case SourceRemote:
		return nil, &DecodeError{Source: src.String(), Err: fmt.Errorf("remote sources are not supported")}
	case SourcePath:
		if src.ref == "" {
			return nil, &DecodeError{Source: "<empty>", Err: fmt.Errorf("empty image path")}
		}
		return d.cache.Load(src.ref)
	}

	data, _, err := src.Bytes()
	if err != nil {
		return nil, &DecodeError{Source: src.String(), Err: err}
	}
	if len(data) == 0 {
		return nil, &DecodeError{Source: src.String(), Err: fmt.Errorf("empty image data")}
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, &DecodeError{Source: src.String(), Err: err}
	}
	return img, nil
}

// ImageInfo contains metadata about a loaded image plus the geometry the
// editor seeds its state with.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format from the file extension: "png",
	// "jpeg", "gif", "webp", "bmp" or "unknown".
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded image type carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// AspectRatio is the reduced width:height ratio.
	AspectRatio geometry.Size `json:"aspect_ratio"`

	// DefaultCrop is the centered crop offered when the image is opened.
	DefaultCrop geometry.Rect `json:"default_crop"`
}

// LoadImageInfo loads an image into the cache and describes it. cropRatio is
// passed to geometry.CalculateDefaultCrop.
func LoadImageInfo(cache *ImageCache, path string, cropRatio float64) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".webp":
		format = "webp"
	case ".bmp":
		format = "bmp"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	size := geometry.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	return &ImageInfo{
		Width:         size.Width,
		Height:        size.Height,
		Format:        format,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
		AspectRatio:   geometry.CalculateAspectRatio(size.Width, size.Height),
		DefaultCrop:   geometry.CalculateDefaultCrop(size, cropRatio),
	}, nil
}
