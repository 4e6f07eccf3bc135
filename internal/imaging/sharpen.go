package imaging

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// SharpenResult is the output of SharpenImage.
type SharpenResult struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Radius          float64 `json:"radius"`
	Strength        float64 `json:"strength"`
	MimeType        string  `json:"mime_type"`
	DataURL         string  `json:"data_url"`
	SharpnessBefore float64 `json:"sharpness_before"`
	SharpnessAfter  float64 `json:"sharpness_after"`
}

// Sharpen applies an unsharp mask to img and returns a new buffer:
//
//	out = clamp(0, 255, orig + strength*(orig - blur(orig, radius)))
//
// per R, G and B channel, with alpha copied from the original. Strength 0 or
// radius <= 0 reproduce the input exactly.
func (e *Engine) Sharpen(img image.Image, radius, strength float64) (*image.NRGBA, error) {
	if img == nil {
		return nil, &ContextAcquisitionError{Reason: "no source image"}
	}
	size := geometry.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if !size.Valid() {
		return nil, &ContextAcquisitionError{Size: size, Reason: "image has no pixels"}
	}

	orig := imaging.Clone(img)
	if radius <= 0 || strength == 0 {
		return orig, nil
	}
	blurred := imaging.Clone(e.blur.Blur(orig, radius))
	if blurred.Rect.Dx() != size.Width || blurred.Rect.Dy() != size.Height {
		return nil, &ContextAcquisitionError{Size: size, Reason: "blur filter changed the image size"}
	}

	out := image.NewNRGBA(orig.Rect)
	for y := 0; y < size.Height; y++ {
		o := orig.Pix[y*orig.Stride : y*orig.Stride+size.Width*4]
		b := blurred.Pix[y*blurred.Stride : y*blurred.Stride+size.Width*4]
		d := out.Pix[y*out.Stride : y*out.Stride+size.Width*4]
		for i := 0; i < len(o); i += 4 {
			for c := 0; c < 3; c++ {
				a := float64(o[i+c])
				d[i+c] = clampByte(a + strength*(a-float64(b[i+c])))
			}
			d[i+3] = o[i+3]
		}
	}
	return out, nil
}

// SharpenImage decodes src, applies Sharpen and returns the result as an
// inline data URL. There is no blob variant.
//
// # Errors
//
//   - *DecodeError when src cannot be loaded or decoded
//   - *ContextAcquisitionError when the image is empty or the blur filter
//     changes its size
//   - *EncodeError when the data URL cannot be produced
//   - ctx.Err() unwrapped when ctx is done before encoding
func (e *Engine) SharpenImage(ctx context.Context, src Source, radius, strength float64) (*SharpenResult, error) {
	img, err := e.Decode(ctx, src)
	if err != nil {
		return nil, err
	}

	out, err := e.Sharpen(img, radius, strength)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url, err := e.encoder.EncodeDataURL(out)
	if err != nil {
		return nil, err
	}

	before, after := MeasureSharpness(img), MeasureSharpness(out)
	e.logger.Debug("sharpen image",
		zap.Stringer("source", src),
		zap.Float64("radius", radius),
		zap.Float64("strength", strength),
		zap.Float64("sharpness_before", before),
		zap.Float64("sharpness_after", after))

	return &SharpenResult{
		Width:           out.Rect.Dx(),
		Height:          out.Rect.Dy(),
		Radius:          radius,
		Strength:        strength,
		MimeType:        mimeOfDataURL(url),
		DataURL:         url,
		SharpnessBefore: before,
		SharpnessAfter:  after,
	}, nil
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
