package imaging

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-label-mcp/internal/label"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations, plus the
// label text colour that would be chosen on it.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation

	// BGR is the value as a label colour triple, blue first.
	BGR [3]uint8 `json:"bgr"`

	// Luminance is the WCAG relative luminance (0-1).
	Luminance float64 `json:"luminance"`

	// TextColor is the contrast colour, "#000000" or "#FFFFFF".
	TextColor string `json:"text_color"`

	// ContrastRatio is the WCAG contrast ratio between the colour and TextColor.
	ContrastRatio float64 `json:"contrast_ratio"`
}

// Describe converts a label colour to a ColorResult.
func Describe(c label.Color) *ColorResult {
	rgba := c.RGBA()
	cf, _ := colorful.MakeColor(rgba)
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	text := label.ContrastColor(c)
	return &ColorResult{
		Hex:           c.Hex(),
		RGB:           RGBColor{R: rgba.R, G: rgba.G, B: rgba.B},
		HSL:           HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		BGR:           [3]uint8(c),
		Luminance:     label.RelativeLuminance(c),
		TextColor:     text.Hex(),
		ContrastRatio: label.ContrastRatio(c, text),
	}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - buf: The image to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if coordinates are outside the image bounds.
func SampleColor(buf *label.ImageBuffer, x, y int) (*ColorResult, error) {
	if x < 0 || x >= buf.Width || y < 0 || y >= buf.Height {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	return Describe(buf.Pixel(x, y)), nil
}
