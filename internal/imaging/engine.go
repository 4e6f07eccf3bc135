package imaging

import (
	"context"
	"image"

	"go.uber.org/zap"
)

// Engine runs the resize-and-crop and sharpen operations on top of the four
// host capabilities. The zero value is not usable; call NewEngine.
type Engine struct {
	decoder  Decoder
	surfaces SurfaceFactory
	blur     BlurFilter
	encoder  Encoder
	logger   *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDecoder replaces the default cache-backed decoder.
func WithDecoder(d Decoder) Option {
	return func(e *Engine) { e.decoder = d }
}

// WithSurfaceFactory replaces NewSurface.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(e *Engine) { e.surfaces = f }
}

// WithBlurFilter replaces the default Gaussian blur.
func WithBlurFilter(b BlurFilter) Option {
	return func(e *Engine) { e.blur = b }
}

// WithEncoder replaces the default PNG encoder.
func WithEncoder(enc Encoder) Option {
	return func(e *Engine) { e.encoder = enc }
}

// WithLogger sets the logger. Engines log at debug level only.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine builds an Engine with PNG output, Gaussian blur, x/image scaling
// and a private image cache unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		surfaces: NewSurface,
		blur:     BildBlur{},
		encoder:  DefaultEncoder(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decoder == nil {
		e.decoder = NewDecoder(nil)
	}
	return e
}

// Decode loads src with the engine's decoder. Failures other than context
// errors surface as *DecodeError.
func (e *Engine) Decode(ctx context.Context, src Source) (image.Image, error) {
	img, err := e.decoder.Decode(ctx, src)
	if err != nil {
		return nil, asDecodeError(src, err)
	}
	return img, nil
}
