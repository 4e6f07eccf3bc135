package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// ApplyResult is the output of ApplyImage. Exactly one of DataURL and Blob is
// set, depending on the requested ResponseType.
type ApplyResult struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Crop     geometry.Rect `json:"crop"`
	MimeType string        `json:"mime_type"`
	DataURL  string        `json:"data_url,omitempty"`
	Blob     []byte        `json:"blob,omitempty"`
}

// Render draws the crop region of img into a new buffer of exactly target
// size and returns the buffer together with the crop rectangle actually used.
//
// The crop is first reconciled to the target aspect ratio (shrinking the
// over-long axis, origin fixed) and then clamped to the image bounds. When
// clamping trims the crop, the remaining region is drawn into the matching
// part of the output at the reconciled scale and the rest stays transparent,
// so the image is never stretched.
//
// # Errors
//
//   - *ContextAcquisitionError when img is nil or empty, the crop misses the
//     image entirely, or the surface cannot be allocated at target size
func (e *Engine) Render(img image.Image, crop geometry.Rect, target geometry.Size, q Quality) (*image.NRGBA, geometry.Rect, error) {
	if img == nil {
		return nil, crop, &ContextAcquisitionError{Size: target, Reason: "no source image"}
	}
	bounds := geometry.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if !bounds.Valid() {
		return nil, crop, &ContextAcquisitionError{Size: bounds, Reason: "source image has no pixels"}
	}

	reconciled := geometry.ReconcileCrop(crop, target)
	used := geometry.ClampRect(reconciled, bounds)
	if used != reconciled {
		e.logger.Debug("crop clamped to source bounds",
			zap.Stringer("crop", reconciled), zap.Stringer("clamped", used), zap.Stringer("source", bounds))
	}
	if used.Empty() {
		return nil, used, &ContextAcquisitionError{
			Size:   target,
			Reason: fmt.Sprintf("crop %s lies outside the %s source", crop, bounds),
		}
	}

	surface, err := e.surfaces(target)
	if err != nil {
		var cae *ContextAcquisitionError
		if !errors.As(err, &cae) {
			err = &ContextAcquisitionError{Size: target, Reason: err.Error()}
		}
		return nil, used, err
	}
	if got := surface.Size(); got != target {
		return nil, used, &ContextAcquisitionError{
			Size:   target,
			Reason: fmt.Sprintf("surface factory returned %s", got),
		}
	}

	surface.DrawRegion(img, used, destRect(reconciled, used, target), q)
	return surface.Image(), used, nil
}

// destRect maps the clamped region used of the reconciled crop onto the
// target surface at the reconciled crop's scale.
func destRect(reconciled, used geometry.Rect, target geometry.Size) geometry.Rect {
	if used == reconciled {
		return geometry.Rect{Width: target.Width, Height: target.Height}
	}
	x0 := scaleFloor(used.X-reconciled.X, target.Width, reconciled.Width)
	y0 := scaleFloor(used.Y-reconciled.Y, target.Height, reconciled.Height)
	x1 := scaleCeil(used.X+used.Width-reconciled.X, target.Width, reconciled.Width)
	y1 := scaleCeil(used.Y+used.Height-reconciled.Y, target.Height, reconciled.Height)
	x1 = min(max(x1, x0+1), target.Width)
	y1 = min(max(y1, y0+1), target.Height)
	return geometry.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// scaleFloor returns floor(v*num/den) for non-negative v.
func scaleFloor(v, num, den int) int {
	return int(int64(v) * int64(num) / int64(den))
}

// scaleCeil returns ceil(v*num/den) for non-negative v.
func scaleCeil(v, num, den int) int {
	return int((int64(v)*int64(num) + int64(den) - 1) / int64(den))
}

// ApplyImage decodes src, draws its crop region scaled to exactly target size
// using the given interpolation quality, and encodes the result as a data URL
// or a blob.
//
// The output always has target dimensions regardless of the crop or source
// size. Nothing is retried.
//
// # Errors
//
//   - *DecodeError when src cannot be loaded or decoded
//   - *ContextAcquisitionError as returned by Render
//   - *EncodeError when encoding fails, yields an empty blob or rt is unknown
//   - ctx.Err() unwrapped when ctx is done before encoding
func (e *Engine) ApplyImage(ctx context.Context, src Source, crop geometry.Rect, target geometry.Size, q Quality, rt ResponseType) (*ApplyResult, error) {
	img, err := e.Decode(ctx, src)
	if err != nil {
		return nil, err
	}

	out, used, err := e.Render(img, crop, target, q)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("apply image",
		zap.Stringer("source", src),
		zap.Stringer("crop", crop),
		zap.Stringer("reconciled", used),
		zap.Stringer("target", target),
		zap.String("quality", string(q)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ApplyResult{Width: target.Width, Height: target.Height, Crop: used}
	if err := e.encodeInto(result, out, rt); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplySharpenedImage renders like ApplyImage, applies Sharpen to the
// rendered pixels and encodes the result once as a data URL.
//
// # Errors
//
//   - *DecodeError when src cannot be loaded or decoded
//   - *ContextAcquisitionError from Render or Sharpen
//   - *EncodeError when the data URL cannot be produced
//   - ctx.Err() unwrapped when ctx is done before encoding
func (e *Engine) ApplySharpenedImage(ctx context.Context, src Source, crop geometry.Rect, target geometry.Size, q Quality, radius, strength float64) (*ApplyResult, error) {
	img, err := e.Decode(ctx, src)
	if err != nil {
		return nil, err
	}

	out, used, err := e.Render(img, crop, target, q)
	if err != nil {
		return nil, err
	}
	sharpened, err := e.Sharpen(out, radius, strength)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("apply sharpened image",
		zap.Stringer("source", src),
		zap.Stringer("crop", crop),
		zap.Stringer("reconciled", used),
		zap.Stringer("target", target),
		zap.String("quality", string(q)),
		zap.Float64("radius", radius),
		zap.Float64("strength", strength))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ApplyResult{Width: target.Width, Height: target.Height, Crop: used}
	if err := e.encodeInto(result, sharpened, ResponseBase64); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) encodeInto(result *ApplyResult, out image.Image, rt ResponseType) error {
	switch rt {
	case ResponseBase64:
		url, err := e.encoder.EncodeDataURL(out)
		if err != nil {
			return err
		}
		result.DataURL = url
		result.MimeType = mimeOfDataURL(url)
	case ResponseBlob:
		blob, err := e.encoder.EncodeBlob(out)
		if err != nil {
			return err
		}
		if blob == nil || len(blob.Data) == 0 {
			return &EncodeError{Format: string(rt), Err: fmt.Errorf("null blob")}
		}
		result.Blob = blob.Data
		result.MimeType = blob.MimeType
	default:
		return &EncodeError{Format: string(rt), Err: fmt.Errorf("unknown response type")}
	}
	return nil
}

func mimeOfDataURL(url string) string {
	meta, _, _ := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	mimeType, _, _ := strings.Cut(meta, ";")
	return mimeType
}
