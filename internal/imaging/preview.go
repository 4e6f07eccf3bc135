package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-crop-mcp/internal/geometry"
)

// PreviewResult contains the source image annotated with a crop outline.
type PreviewResult struct {
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Crop        geometry.Rect `json:"crop"`
	ImageBase64 string        `json:"image_base64"`
	MimeType    string        `json:"mime_type"`
}

// PreviewCrop draws the crop that ApplyImage would use for target onto a copy
// of img: the area outside it is dimmed, the outline and rule-of-thirds guides
// are drawn in colorHex, and the reconciled size is printed at the top-left
// corner. An invalid colorHex falls back to opaque yellow.
func PreviewCrop(img image.Image, crop geometry.Rect, target geometry.Size, colorHex string) (*PreviewResult, error) {
	bounds := geometry.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	used := geometry.ClampRect(geometry.ReconcileCrop(crop, target), bounds)
	if used.Empty() {
		return nil, fmt.Errorf("crop %s lies outside the %s image", crop, bounds)
	}

	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = color.RGBA{255, 204, 0, 255}
	}

	result := imaging.Clone(img)
	inside := image.Rect(used.X, used.Y, used.X+used.Width, used.Y+used.Height)

	// Dim everything outside the crop to half brightness.
	for y := 0; y < bounds.Height; y++ {
		for x := 0; x < bounds.Width; x++ {
			if image.Pt(x, y).In(inside) {
				continue
			}
			i := result.PixOffset(x, y)
			result.Pix[i+0] /= 2
			result.Pix[i+1] /= 2
			result.Pix[i+2] /= 2
		}
	}

	c := color.NRGBAModel.Convert(lineColor)

	// Outline
	for x := inside.Min.X; x < inside.Max.X; x++ {
		result.Set(x, inside.Min.Y, c)
		result.Set(x, inside.Max.Y-1, c)
	}
	for y := inside.Min.Y; y < inside.Max.Y; y++ {
		result.Set(inside.Min.X, y, c)
		result.Set(inside.Max.X-1, y, c)
	}

	// Thirds
	for i := 1; i <= 2; i++ {
		gx := inside.Min.X + used.Width*i/3
		gy := inside.Min.Y + used.Height*i/3
		for y := inside.Min.Y; y < inside.Max.Y; y++ {
			result.Set(gx, y, c)
		}
		for x := inside.Min.X; x < inside.Max.X; x++ {
			result.Set(x, gy, c)
		}
	}

	label := fmt.Sprintf("%dx%d", used.Width, used.Height)
	drawLabel(result, inside.Min.X+2, inside.Min.Y+2, label,
		color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 180})

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, &EncodeError{Format: "png", Err: err}
	}

	return &PreviewResult{
		Width:       bounds.Width,
		Height:      bounds.Height,
		Crop:        used,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	switch len(hex) {
	case 6:
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex color length")
}

// labelGlyphs is a 3x5 pixel font covering crop size labels.
var labelGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'x': {"000", "101", "010", "101", "000"},
}

// drawLabel draws text with a background box at (x, y), clipped to the image.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	set := func(px, py int, c color.NRGBA) {
		if image.Pt(px, py).In(bounds) {
			img.SetNRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range labelGlyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
