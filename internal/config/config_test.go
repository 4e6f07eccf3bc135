package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Log.MaxSize)
	assert.Equal(t, "high", cfg.Engine.Quality)
	assert.Equal(t, "png", cfg.Engine.OutputFormat)
	assert.Equal(t, 92, cfg.Engine.JPEGQuality)
	assert.Equal(t, "gaussian", cfg.Engine.BlurFilter)
	assert.Equal(t, 0.8, cfg.Editor.CropRatio)
	assert.Equal(t, []string{"1200x675", "1200x800", "400x250", "600x400", "1200x630"}, cfg.Editor.Buckets)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: DEBUG
engine:
  quality: low
  output_format: webp
  webp_quality: 75
  blur_filter: imaging
editor:
  crop_ratio: 0.5
  buckets: ["640x480", "100x100"]
  sharpen_strength: 0.4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "unset keys keep their defaults")
	assert.Equal(t, imaging.QualityLow, cfg.Quality())
	assert.Equal(t, "image/webp", cfg.Encoder().MimeType())
	assert.Equal(t, float32(75), cfg.Encoder().WebPQuality)

	blur, err := cfg.BlurFilter()
	require.NoError(t, err)
	assert.Equal(t, imaging.ImagingBlur{}, blur)

	presets, err := cfg.Presets()
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, geometry.Size{Width: 4, Height: 3}, presets[0].Ratio)

	d := cfg.EditorDefaults()
	assert.Equal(t, 0.5, d.CropRatio)
	assert.Equal(t, 1.0, d.Sharpness.Radius)
	assert.Equal(t, 0.4, d.Sharpness.Strength)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("IMAGE_CROP_ENGINE_QUALITY", "medium")
	t.Setenv("IMAGE_CROP_LOG_FORMAT", "json")
	t.Setenv("IMAGE_CROP_EDITOR_CROP_RATIO", "0.6")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, imaging.QualityMedium, cfg.Quality())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 0.6, cfg.Editor.CropRatio)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad quality", "engine:\n  quality: ultra\n"},
		{"crop ratio above one", "editor:\n  crop_ratio: 1.5\n"},
		{"bad bucket", "editor:\n  buckets: [\"wide\"]\n"},
		{"duplicate bucket", "editor:\n  buckets: [\"640x480\", \"640x480\"]\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"jpeg quality out of range", "engine:\n  jpeg_quality: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
