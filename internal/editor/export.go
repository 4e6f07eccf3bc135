package editor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateCropBounds, ExportDataV1{})
	return v
}

func validateCropBounds(sl validator.StructLevel) {
	d := sl.Current().Interface().(ExportDataV1)
	crop := d.Crop()
	if !crop.Within(d.SourceSize()) {
		sl.ReportError(d.CropWidth, "cropWidth", "CropWidth", "cropwithin", crop.String())
	}
}

// ExportDataV1 is the original export layout: source size, crop and bucket.
type ExportDataV1 struct {
	SrcWidth   int              `json:"srcWidth" validate:"gt=0"`
	SrcHeight  int              `json:"srcHeight" validate:"gt=0"`
	CropX      int              `json:"cropX" validate:"gte=0"`
	CropY      int              `json:"cropY" validate:"gte=0"`
	CropWidth  int              `json:"cropWidth" validate:"gt=0"`
	CropHeight int              `json:"cropHeight" validate:"gt=0"`
	Bucket     *geometry.Bucket `json:"bucket"`
}

// Crop returns the crop rectangle.
func (d ExportDataV1) Crop() geometry.Rect {
	return geometry.Rect{X: d.CropX, Y: d.CropY, Width: d.CropWidth, Height: d.CropHeight}
}

// SourceSize returns the natural size of the exported image.
func (d ExportDataV1) SourceSize() geometry.Size {
	return geometry.Size{Width: d.SrcWidth, Height: d.SrcHeight}
}

// ExportDataV2 extends V1 with the resize quality and sharpen parameters.
//
// Sharpness is the single scalar written by older editors, which drove both
// the blur radius and the mix from one value. SharpnessRadius and
// SharpnessStrength are optional on read; when either is missing it falls
// back to Sharpness.
type ExportDataV2 struct {
	ExportDataV1

	ResizeQuality     imaging.Quality `json:"resizeQuality" validate:"omitempty,oneof=low medium high"`
	Sharpness         float64         `json:"sharpness" validate:"gte=0"`
	SharpnessRadius   *float64        `json:"sharpnessRadius,omitempty" validate:"omitempty,gte=0"`
	SharpnessStrength *float64        `json:"sharpnessStrength,omitempty" validate:"omitempty,gte=0"`
}

// SharpnessParams resolves the two-scalar form, applying the legacy fallback.
func (d ExportDataV2) SharpnessParams() Sharpness {
	s := Sharpness{Radius: d.Sharpness, Strength: d.Sharpness}
	if d.SharpnessRadius != nil {
		s.Radius = *d.SharpnessRadius
	}
	if d.SharpnessStrength != nil {
		s.Strength = *d.SharpnessStrength
	}
	return s
}

// Quality returns the resize quality, defaulting to low for V1 payloads.
func (d ExportDataV2) Quality() imaging.Quality {
	if d.ResizeQuality == "" {
		return imaging.QualityLow
	}
	return d.ResizeQuality
}

// ExportV1 captures img in the V1 layout.
func ExportV1(img *Image, presets Presets) ExportDataV1 {
	d := ExportDataV1{
		SrcWidth:   img.Width,
		SrcHeight:  img.Height,
		CropX:      img.Crop.X,
		CropY:      img.Crop.Y,
		CropWidth:  img.Crop.Width,
		CropHeight: img.Crop.Height,
	}
	if b, ok := presets.At(img.Bucket); ok {
		d.Bucket = &b
	}
	return d
}

// ExportV2 captures img in the V2 layout. All three sharpness fields are
// written; Sharpness mirrors the strength for readers that predate the split.
func ExportV2(img *Image, presets Presets) ExportDataV2 {
	radius, strength := img.Sharpness.Radius, img.Sharpness.Strength
	return ExportDataV2{
		ExportDataV1:      ExportV1(img, presets),
		ResizeQuality:     img.ResizeQuality,
		Sharpness:         strength,
		SharpnessRadius:   &radius,
		SharpnessStrength: &strength,
	}
}

// Image rebuilds an editor record from the export. The bucket is matched
// against presets by size; an unknown or absent bucket yields NoBucket. An
// image whose bucket index was out of range at export time carries no bucket
// and so also comes back as NoBucket.
func (d ExportDataV2) Image(src, title string, presets Presets) *Image {
	bucket := NoBucket
	if d.Bucket != nil {
		bucket = presets.Index(*d.Bucket)
	}
	return &Image{
		Src:           src,
		Title:         title,
		Width:         d.SrcWidth,
		Height:        d.SrcHeight,
		Crop:          d.Crop(),
		Bucket:        bucket,
		ResizeQuality: d.Quality(),
		Sharpness:     d.SharpnessParams(),
	}
}

// Validate checks field ranges and that the crop lies within the source.
func (d ExportDataV1) Validate() error {
	return validationError(validate.Struct(d))
}

// Validate checks field ranges and that the crop lies within the source.
func (d ExportDataV2) Validate() error {
	return validationError(validate.Struct(d))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "cropwithin" {
			msgs = append(msgs, fmt.Sprintf("crop %v exceeds the source bounds", fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid export data: %s", strings.Join(msgs, "; "))
}

// Version reports which layout a payload uses: 2 when any V2 field is
// present, otherwise 1.
func Version(data []byte) int {
	for _, key := range []string{"resizeQuality", "sharpness", "sharpnessRadius", "sharpnessStrength"} {
		if json.Get(data, key).ValueType() != jsoniter.InvalidValue {
			return 2
		}
	}
	return 1
}

// Marshal encodes an export record.
func Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode export data: %w", err)
	}
	return data, nil
}

// UnmarshalV1 decodes and validates a V1 record. Unknown fields are ignored.
func UnmarshalV1(data []byte) (*ExportDataV1, error) {
	var d ExportDataV1
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode export data: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// UnmarshalV2 decodes and validates a record as V2. V1 payloads are accepted
// and read with zero sharpness and the default resize quality.
func UnmarshalV2(data []byte) (*ExportDataV2, error) {
	var d ExportDataV2
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode export data: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
