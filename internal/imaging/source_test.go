package imaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFromString_Kinds(t *testing.T) {
	tests := []struct {
		ref  string
		kind SourceKind
	}{
		{"/tmp/photo.jpg", SourcePath},
		{"relative/photo.png", SourcePath},
		{"data:image/png;base64,AAAA", SourceDataURL},
		{"DATA:image/png;base64,AAAA", SourceDataURL},
		{"http://example.com/a.png", SourceRemote},
		{"HTTPS://example.com/a.png", SourceRemote},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.kind, SourceFromString(tt.ref).Kind())
		})
	}
}

func TestSource_StringSummarizesInlineData(t *testing.T) {
	url := "data:image/png;base64," + strings.Repeat("A", 4096)
	s := SourceFromString(url).String()
	assert.Less(t, len(s), 100)
	assert.True(t, strings.HasPrefix(s, "data:image/png;base64"))

	assert.Equal(t, "blob(3 bytes)", SourceFromBytes([]byte{1, 2, 3}).String())
}

func TestParseDataURL(t *testing.T) {
	data, mimeType, err := parseDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte("hello"), data)

	// Unpadded base64
	data, _, err = parseDataURL("data:image/png;base64,aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Percent-encoded payload with default MIME type
	data, mimeType, err = parseDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mimeType)
	assert.Equal(t, []byte("hello world"), data)

	_, _, err = parseDataURL("data:image/png;base64")
	assert.Error(t, err)
	_, _, err = parseDataURL("file:///x.png")
	assert.Error(t, err)
}

func TestReadAsDataURL(t *testing.T) {
	png := encodePNG(t, createPatternImage(4, 4))
	url := ReadAsDataURL(png)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	back, ok, err := SourceFromString(url).Bytes()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, png, back)

	_, ok, err = SourceFromString("/some/file.png").Bytes()
	require.NoError(t, err)
	assert.False(t, ok, "path sources are read through the cache")
}
