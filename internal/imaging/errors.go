package imaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// Sentinels matched by the typed errors below via errors.Is.
var (
	ErrDecode             = errors.New("image decode failed")
	ErrContextAcquisition = errors.New("drawing surface unavailable")
	ErrEncode             = errors.New("image encode failed")
)

// DecodeError reports that a source could not be loaded into pixels.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ContextAcquisitionError reports that no drawing surface could be prepared,
// either because the requested size is unusable or because the decoded image
// has no pixels to work on.
type ContextAcquisitionError struct {
	Size   geometry.Size
	Reason string
}

func (e *ContextAcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire %s drawing surface: %s", e.Size, e.Reason)
}

func (e *ContextAcquisitionError) Is(target error) bool { return target == ErrContextAcquisition }

// EncodeError reports that the output buffer could not be serialized, or
// serialized to nothing.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s image: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error        { return e.Err }
func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// asDecodeError normalizes errors coming out of a Decoder so that third-party
// decoders still surface as *DecodeError. Context errors pass through.
func asDecodeError(src Source, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &DecodeError{Source: src.String(), Err: err}
}
