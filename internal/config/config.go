// Package config loads the server configuration.
//
// Values are layered: struct defaults, then an optional YAML/JSON/TOML file,
// then IMAGE_CROP_* environment variables (IMAGE_CROP_ENGINE_QUALITY for
// engine.quality, and so on). The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ironsheep/image-crop-mcp/internal/editor"
	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_CROP"

// Config is the complete server configuration.
type Config struct {
	Log    logging.Config `mapstructure:"log"`
	Engine EngineConfig   `mapstructure:"engine"`
	Editor EditorConfig   `mapstructure:"editor"`
}

// EngineConfig tunes the resize and sharpen engines.
type EngineConfig struct {
	// Quality is the resize quality used when a request names none.
	Quality string `mapstructure:"quality" default:"high" validate:"oneof=low medium high"`

	// OutputFormat is the encoder format for results.
	OutputFormat string `mapstructure:"output_format" default:"png" validate:"oneof=png jpeg jpg webp"`

	JPEGQuality  int     `mapstructure:"jpeg_quality" default:"92" validate:"gte=1,lte=100"`
	WebPQuality  float32 `mapstructure:"webp_quality" default:"90" validate:"gte=0,lte=100"`
	WebPLossless bool    `mapstructure:"webp_lossless"`

	// BlurFilter selects the sharpen blur: gaussian (bild) or imaging.
	BlurFilter string `mapstructure:"blur_filter" default:"gaussian" validate:"oneof=gaussian bild imaging"`
}

// EditorConfig seeds editor records.
type EditorConfig struct {
	CropRatio float64  `mapstructure:"crop_ratio" default:"0.8" validate:"gt=0,lte=1"`
	Buckets   []string `mapstructure:"buckets" default:"[\"1200x675\",\"1200x800\",\"400x250\",\"600x400\",\"1200x630\"]" validate:"dive,required"`

	SharpenRadius   float64 `mapstructure:"sharpen_radius" default:"1" validate:"gte=0"`
	SharpenStrength float64 `mapstructure:"sharpen_strength" validate:"gte=0"`
}

// Default returns the configuration with only struct defaults applied.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration from defaults, the file at path (skipped
// when empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v, "", reflect.ValueOf(cfg).Elem())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// registerKeys declares every mapstructure key with its default so that
// AutomaticEnv can override keys that no config file mentions.
func registerKeys(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			registerKeys(v, key, rv.Field(i))
			continue
		}
		v.SetDefault(key, rv.Field(i).Interface())
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Engine.Quality = strings.ToLower(c.Engine.Quality)
	c.Engine.OutputFormat = strings.ToLower(c.Engine.OutputFormat)
	c.Engine.BlurFilter = strings.ToLower(c.Engine.BlurFilter)
}

var validate = validator.New()

// Validate checks every field and that each bucket parses.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config validation failed: %s must satisfy %q, got %v", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := c.Presets(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Presets parses the configured buckets.
func (c *Config) Presets() (editor.Presets, error) {
	sizes := make([]geometry.Size, 0, len(c.Editor.Buckets))
	for _, b := range c.Editor.Buckets {
		s, err := geometry.ParseSize(b)
		if err != nil {
			return nil, fmt.Errorf("bucket: %w", err)
		}
		sizes = append(sizes, s)
	}
	return editor.NewPresets(sizes...)
}

// EditorDefaults returns the seed values for new editor records.
func (c *Config) EditorDefaults() editor.Defaults {
	return editor.Defaults{
		CropRatio:     c.Editor.CropRatio,
		ResizeQuality: c.Quality(),
		Sharpness: editor.Sharpness{
			Radius:   c.Editor.SharpenRadius,
			Strength: c.Editor.SharpenStrength,
		},
	}
}

// Quality returns the default resize quality.
func (c *Config) Quality() imaging.Quality {
	q, err := imaging.ParseQuality(c.Engine.Quality, imaging.QualityHigh)
	if err != nil {
		return imaging.QualityHigh
	}
	return q
}

// Encoder returns the configured output encoder.
func (c *Config) Encoder() *imaging.FormatEncoder {
	return &imaging.FormatEncoder{
		Format:       c.Engine.OutputFormat,
		JPEGQuality:  c.Engine.JPEGQuality,
		WebPQuality:  c.Engine.WebPQuality,
		WebPLossless: c.Engine.WebPLossless,
	}
}

// BlurFilter returns the configured blur implementation.
func (c *Config) BlurFilter() (imaging.BlurFilter, error) {
	return imaging.BlurFilterByName(c.Engine.BlurFilter)
}
