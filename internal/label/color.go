package label

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit colour stored in B, G, R order.
//
// Index 0 is blue, 1 is green and 2 is red. Use BGR or FromRGBA to build one
// from conventionally ordered components.
type Color [3]uint8

var (
	// Black is the dark contrast colour.
	Black = Color{0, 0, 0}

	// White is the light contrast colour.
	White = Color{255, 255, 255}
)

// BGR builds a Color from components in storage order.
func BGR(b, g, r uint8) Color {
	return Color{b, g, r}
}

// FromRGBA converts any color.Color to a Color, dropping alpha.
func FromRGBA(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{uint8(b >> 8), uint8(g >> 8), uint8(r >> 8)}
}

// RGBA returns the colour as an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c[2], G: c[1], B: c[0], A: 0xff}
}

// Hex returns the colour as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c[2], c[1], c[0])
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// ParseColor parses a colour string.
//
// Two forms are accepted:
//   - "#RRGGBB" or "#RGB" hex, conventional red-first order
//   - "b,g,r" decimal triple in storage order, each component 0-255
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color string")
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(strings.ToLower(s))
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.Clamped().RGB255()
		return Color{b, g, r}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB or b,g,r", s)
	}
	var out Color
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("invalid color component %q: %w", p, err)
		}
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("color component %d out of range 0-255", v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// linearize maps an 8-bit channel to linear light.
func linearize(v uint8) float64 {
	f := float64(v) / 255.0
	if f <= 0.03928 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the luminance of c in [0,1].
//
// The weights are applied by storage index: 0.2126 to index 2, 0.7152 to
// index 1 and 0.0722 to index 0. With B, G, R storage that is the usual
// red/green/blue weighting.
func RelativeLuminance(c Color) float64 {
	return 0.2126*linearize(c[2]) + 0.7152*linearize(c[1]) + 0.0722*linearize(c[0])
}

// ContrastRatio returns the contrast ratio between two colours, from 1 to 21.
func ContrastRatio(a, b Color) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// ContrastColor returns Black or White, whichever reads better on bg.
//
// The contrast against a white reference is 1.05/(L+0.05) and against a black
// reference (L+0.05)/0.05, where L is RelativeLuminance(bg). Black wins only
// when its ratio is strictly greater; ties go to White.
func ContrastColor(bg Color) Color {
	lbg := RelativeLuminance(bg)
	cw := (1.0 + 0.05) / (lbg + 0.05)
	cb := (lbg + 0.05) / (0.0 + 0.05)
	if cw < cb {
		return Black
	}
	return White
}
