// Package imaging implements the pixel side of the crop editor: the
// resize-and-crop engine, the unsharp-mask sharpen engine, and the small set of
// host capabilities they are built on.
//
// # Capabilities
//
// The engines never touch codecs or scalers directly. They go through four
// interfaces, each with a default implementation:
//   - Decoder: Source -> image.Image (DefaultDecoder, backed by ImageCache)
//   - Surface: an exact-size drawing buffer with interpolated region drawing
//     (NewSurface, backed by golang.org/x/image/draw)
//   - BlurFilter: image + radius -> blurred image (BildBlur, ImagingBlur)
//   - Encoder: image -> blob bytes or data URL (FormatEncoder)
//
// Engine wires them together. Tests and embedders can substitute any of them
// with the With* options.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Crop rectangles are expressed relative
// to the decoded image's bounds, so a decoded image whose Bounds().Min is not
// the origin is handled transparently.
//
// # Sources
//
// A Source is a file path, a data: URI, or an in-memory blob. Remote URLs are
// rejected with a DecodeError; this package performs no network I/O.
//
// # Thread Safety
//
// Engine holds no per-call state. Every call decodes into its own buffers and
// allocates its own Surface, so concurrent calls are independent. ImageCache
// is safe for concurrent use.
//
// # Error Handling
//
// Engine operations fail with exactly one of three error kinds, all usable
// with errors.As and errors.Is:
//   - *DecodeError (ErrDecode): the source could not be read or decoded
//   - *ContextAcquisitionError (ErrContextAcquisition): no drawing surface
//     could be set up for the requested size or the image had no pixels
//   - *EncodeError (ErrEncode): the output could not be serialized
//
// A cancelled context is returned as-is. Nothing is retried and no partial
// output is ever returned.
package imaging
