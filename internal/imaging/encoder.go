package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ResponseType selects how ApplyImage returns its output.
type ResponseType string

const (
	// ResponseBase64 returns an inline data URL.
	ResponseBase64 ResponseType = "base64"
	// ResponseBlob returns the raw encoded bytes.
	ResponseBlob ResponseType = "blob"
)

// ParseResponseType accepts "base64" or "blob". Empty yields ResponseBase64.
func ParseResponseType(s string) (ResponseType, error) {
	switch ResponseType(strings.ToLower(s)) {
	case "", ResponseBase64:
		return ResponseBase64, nil
	case ResponseBlob:
		return ResponseBlob, nil
	}
	return "", fmt.Errorf("unknown response type %q (want base64 or blob)", s)
}

// Blob is an encoded image held in memory.
type Blob struct {
	Data     []byte
	MimeType string
}

// Encoder serializes pixels.
type Encoder interface {
	EncodeBlob(img image.Image) (*Blob, error)
	EncodeDataURL(img image.Image) (string, error)
}

// FormatEncoder encodes to one of "png", "jpeg" or "webp". The data URL is
// always built from the same bytes as the blob.
type FormatEncoder struct {
	Format       string
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

// DefaultEncoder writes lossless PNG.
func DefaultEncoder() *FormatEncoder {
	return &FormatEncoder{Format: "png", JPEGQuality: 92, WebPQuality: 90}
}

// MimeType returns the MIME type for the configured format.
func (e *FormatEncoder) MimeType() string {
	switch e.normalizedFormat() {
	case "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func (e *FormatEncoder) normalizedFormat() string {
	switch strings.ToLower(e.Format) {
	case "jpg", "jpeg":
		return "jpeg"
	case "webp":
		return "webp"
	case "", "png":
		return "png"
	}
	return e.Format
}

// EncodeBlob implements Encoder.
func (e *FormatEncoder) EncodeBlob(img image.Image) (*Blob, error) {
	format := e.normalizedFormat()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "jpeg":
		q := e.JPEGQuality
		if q <= 0 {
			q = 92
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q))
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Lossless: e.WebPLossless, Quality: e.WebPQuality})
	default:
		err = fmt.Errorf("unsupported output format %q", e.Format)
	}
	if err != nil {
		return nil, &EncodeError{Format: format, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Format: format, Err: fmt.Errorf("encoder produced no data")}
	}
	return &Blob{Data: buf.Bytes(), MimeType: e.MimeType()}, nil
}

// EncodeDataURL implements Encoder.
func (e *FormatEncoder) EncodeDataURL(img image.Image) (string, error) {
	blob, err := e.EncodeBlob(img)
	if err != nil {
		return "", err
	}
	return dataURL(blob.MimeType, blob.Data), nil
}
