package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SourceKind tells how a Source addresses its image.
type SourceKind int

const (
	// SourcePath is a file on the local filesystem.
	SourcePath SourceKind = iota
	// SourceDataURL is an inline data: URI.
	SourceDataURL
	// SourceBlob is raw encoded bytes held in memory.
	SourceBlob
	// SourceRemote is an http(s) URL. It is recognized only so it can be
	// rejected with a clear error.
	SourceRemote
)

// Source is an addressable image: a path, a data URI, or a blob.
type Source struct {
	kind SourceKind
	ref  string
	blob []byte
}

// SourceFromString classifies ref as a data URI, a remote URL, or a path.
func SourceFromString(ref string) Source {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return Source{kind: SourceDataURL, ref: ref}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Source{kind: SourceRemote, ref: ref}
	default:
		return Source{kind: SourcePath, ref: ref}
	}
}

// SourceFromBytes wraps encoded image bytes. The slice is not copied.
func SourceFromBytes(data []byte) Source {
	return Source{kind: SourceBlob, blob: data}
}

// Kind returns how the source is addressed.
func (s Source) Kind() SourceKind { return s.kind }

// String renders the source for logs and error messages. Inline payloads are
// summarized rather than printed.
func (s Source) String() string {
	switch s.kind {
	case SourceBlob:
		return fmt.Sprintf("blob(%d bytes)", len(s.blob))
	case SourceDataURL:
		head, _, _ := strings.Cut(s.ref, ",")
		return fmt.Sprintf("%s,...(%d bytes)", head, len(s.ref))
	default:
		return s.ref
	}
}

// Bytes returns the encoded image bytes for inline sources. Path sources
// return ok=false; the decoder reads them through its cache instead.
func (s Source) Bytes() (data []byte, ok bool, err error) {
	switch s.kind {
	case SourceBlob:
		return s.blob, true, nil
	case SourceDataURL:
		data, _, err := parseDataURL(s.ref)
		return data, true, err
	default:
		return nil, false, nil
	}
}

// parseDataURL decodes data:[<mime>][;base64],<payload>.
func parseDataURL(ref string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		rest, ok = strings.CutPrefix(ref, "DATA:")
	}
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", fmt.Errorf("data URL has no payload separator")
	}

	mimeType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			mimeType = part
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers strip padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
		return data, mimeType, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid percent-encoded payload: %w", err)
	}
	return []byte(unescaped), mimeType, nil
}

// ReadAsDataURL turns blob bytes into a base64 data URL, sniffing the MIME
// type from the content.
func ReadAsDataURL(data []byte) string {
	return dataURL(http.DetectContentType(data), data)
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
